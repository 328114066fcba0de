package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/search"
)

const defaultTriggersPageSize = 10

func (a *app) triggersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "triggers",
		Aliases: []string{"trigger"},
		Short:   "Manage trigger definitions",
	}

	var (
		q    console.TriggerQuery
		file string
	)
	addQuery := func(c *cobra.Command) {
		c.Flags().StringVar(&q.Tags, "tags", "", "tag filter, e.g. env|prod")
		c.Flags().IntVar(&q.Page, "page", 1, "page of the list, 1 based")
		c.Flags().IntVar(&q.PageSize, "page-size", defaultTriggersPageSize, "triggers per page")
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List triggers with their conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := a.console.Triggers(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.printTriggers(view)
		},
	}
	addQuery(list)

	get := &cobra.Command{
		Use:   "get TRIGGER_ID",
		Short: "Show a full trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := a.console.Trigger(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(ft, nil)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a full trigger from a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			view, err := a.console.CreateTrigger(cmd.Context(), doc, q)
			if err != nil {
				return err
			}
			return a.message(view.Visible(), "Trigger created, %d triggers defined", view.Pages.Total)
		},
	}
	create.Flags().StringVarP(&file, "file", "f", "", "trigger JSON file, - for stdin")

	update := &cobra.Command{
		Use:   "update TRIGGER_ID",
		Short: "Replace a full trigger with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			view, err := a.console.UpdateTrigger(cmd.Context(), args[0], doc, q)
			if err != nil {
				return err
			}
			return a.message(view.Visible(), "Trigger %s updated", args[0])
		},
	}
	update.Flags().StringVarP(&file, "file", "f", "", "trigger JSON file, - for stdin")

	del := &cobra.Command{
		Use:   "delete TRIGGER_ID",
		Short: "Delete a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.console.DeleteTrigger(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			return a.message(view.Visible(), "Trigger %s deleted, %d triggers defined", args[0], view.Pages.Total)
		},
	}

	cmd.AddCommand(list, get, create, update, del,
		a.enableCommand("enable", true, &q),
		a.enableCommand("disable", false, &q),
		a.searchCommand(),
	)
	return cmd
}

func (a *app) enableCommand(name string, enabled bool, q *console.TriggerQuery) *cobra.Command {
	return &cobra.Command{
		Use:   name + " TRIGGER_ID",
		Short: fmt.Sprintf("%s a trigger", map[bool]string{true: "Enable", false: "Disable"}[enabled]),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.console.SetTriggerEnabled(cmd.Context(), args[0], enabled, *q)
			if err != nil {
				return err
			}
			return a.message(view.Visible(), "Trigger %s %sd", args[0], name)
		},
	}
}

func (a *app) printTriggers(view *console.TriggersView) error {
	visible := view.Visible()
	return a.print(visible, func(w io.Writer) {
		row(w, "ID", "NAME", "SEVERITY", "ENABLED", "CONDITIONS", "TAGS")
		for _, ft := range visible {
			t := ft.Trigger
			if t == nil {
				continue
			}
			row(w, t.ID, orDash(t.Name), orDash(string(t.Severity)), strconv.FormatBool(t.Enabled), len(ft.Conditions), pairs(t.Tags))
		}
		if p := view.Pages; p.Total > 0 {
			fmt.Fprintf(w, "\nShowing %d to %d of %d triggers (page %d of %d)\n", p.From+1, p.To, p.Total, p.PageNumber, p.MaxPages)
		}
	})
}

func (a *app) searchCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Full text search over trigger and action definitions",
		Long: `Search the names, descriptions, tags and properties of trigger and action
definitions. The query uses the bleve query string syntax, e.g. 'cpu',
'severity:HIGH' or '+kind:action email'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			view, err := a.console.Triggers(ctx, console.TriggerQuery{})
			if err != nil {
				return err
			}
			defs, err := a.console.ActionDefinitions(ctx, console.AllPlugins)
			if err != nil {
				return err
			}
			idx, err := search.New(a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := idx.Close(); err != nil {
					a.logger.Warn("Failed to close search index", zap.Error(err))
				}
			}()
			if err := idx.Rebuild(view.Triggers, defs); err != nil {
				return err
			}
			hits, err := idx.Search(args[0], limit)
			if err != nil {
				return err
			}
			return a.print(hits, func(w io.Writer) {
				row(w, "KIND", "ID", "PLUGIN", "SCORE")
				for _, h := range hits {
					row(w, h.Kind, h.ID, orDash(h.Plugin), fmt.Sprintf("%.3f", h.Score))
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "maximum hits")
	return cmd
}
