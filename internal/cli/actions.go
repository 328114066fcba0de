package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

func (a *app) actionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "actions",
		Aliases: []string{"action"},
		Short:   "Manage action plugins and action definitions",
	}

	var (
		plugin string
		file   string
	)

	plugins := &cobra.Command{
		Use:   "plugins [PLUGIN]",
		Short: "List action plugins, or the properties one plugin accepts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				props, err := a.console.PluginProperties(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(props, func(w io.Writer) {
					row(w, "PROPERTY")
					for _, p := range props {
						row(w, p)
					}
				})
			}
			view, err := a.console.Plugins(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(view.Plugins, func(w io.Writer) {
				row(w, "PLUGIN")
				for _, p := range view.Plugins {
					row(w, p)
				}
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List action definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := a.console.ActionDefinitions(cmd.Context(), plugin)
			if err != nil {
				return err
			}
			return a.printActions(defs)
		},
	}
	list.Flags().StringVar(&plugin, "plugin", console.AllPlugins, "only definitions of this plugin")

	get := &cobra.Command{
		Use:   "get PLUGIN ACTION_ID",
		Short: "Show an action definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.console.ActionDefinition(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(def, nil)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an action definition from a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defs, err := a.console.CreateActionDefinition(cmd.Context(), doc, console.AllPlugins)
			if err != nil {
				return err
			}
			return a.message(defs, "Action created, %d actions defined", len(defs))
		},
	}
	create.Flags().StringVarP(&file, "file", "f", "", "action JSON file, - for stdin")

	update := &cobra.Command{
		Use:   "update",
		Short: "Replace an action definition with a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defs, err := a.console.UpdateActionDefinition(cmd.Context(), "", "", doc, console.AllPlugins)
			if err != nil {
				return err
			}
			return a.message(defs, "Action updated")
		},
	}
	update.Flags().StringVarP(&file, "file", "f", "", "action JSON file, - for stdin")

	del := &cobra.Command{
		Use:   "delete PLUGIN ACTION_ID",
		Short: "Delete an action definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := a.console.DeleteActionDefinition(cmd.Context(), args[0], args[1], console.AllPlugins)
			if err != nil {
				return err
			}
			return a.message(defs, "Action %s/%s deleted, %d actions defined", args[0], args[1], len(defs))
		},
	}

	cmd.AddCommand(plugins, list, get, create, update, del)
	return cmd
}

func (a *app) printActions(defs []types.ActionDefinition) error {
	return a.print(defs, func(w io.Writer) {
		row(w, "PLUGIN", "ID", "STATES", "PROPERTIES")
		for _, d := range defs {
			states := "-"
			if len(d.States) > 0 {
				states = strings.Join(d.States, ",")
			}
			row(w, d.ActionPlugin, d.ActionID, states, pairs(d.Properties))
		}
	})
}
