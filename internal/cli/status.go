package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backend status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.console.Status(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(status, func(w io.Writer) {
				keys := make([]string, 0, len(status))
				for k := range status {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				row(w, "KEY", "VALUE")
				for _, k := range keys {
					row(w, k, status[k])
				}
			})
		},
	}
}

func (a *app) exportCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every trigger and action definition of the tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := a.console.Export(cmd.Context())
			if err != nil {
				return err
			}
			if file == "" {
				if a.output == OutputYAML {
					return writeYAML(a.out, defs)
				}
				return writeJSON(a.out, defs)
			}
			f, err := os.Create(file)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", file, err)
			}
			defer f.Close()
			if err := writeJSON(f, defs); err != nil {
				return err
			}
			return a.message(defs, "Exported %d triggers and %d action plugins to %s",
				len(defs.Triggers), len(defs.Actions), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "write to file instead of stdout")
	return cmd
}

func (a *app) importCommand() *cobra.Command {
	var (
		file     string
		strategy string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import trigger and action definitions",
		Long: `Import trigger and action definitions as produced by export.

Strategies:
  DELETE  remove existing definitions first
  ALL     import everything, overwriting existing definitions
  NEW     import only definitions that do not exist yet
  OLD     import only definitions that already exist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := types.ImportStrategy(strings.ToUpper(strategy))
			if !s.Valid() {
				return fmt.Errorf("%w: unknown strategy %q: use DELETE, ALL, NEW or OLD", client.ErrInvalidInput, strategy)
			}
			doc, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defs, err := a.console.Import(cmd.Context(), s, doc)
			if err != nil {
				return err
			}
			return a.message(defs, "Imported %d triggers and %d action plugins", len(defs.Triggers), len(defs.Actions))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "definitions file, - for stdin")
	cmd.Flags().StringVar(&strategy, "strategy", string(types.ImportNew), "DELETE, ALL, NEW or OLD")
	return cmd
}
