package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// lifecycleFunc is one of the console lifecycle methods as a method
// expression; the console only exists once flags are parsed.
type lifecycleFunc func(c *console.Console, ctx context.Context, alertID string, l console.Lifecycle, q console.AlertsQuery) (types.Page[types.Alert], error)

func (a *app) alertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alerts",
		Aliases: []string{"alert"},
		Short:   "Query and act on alerts",
	}

	var (
		rf rangeFlags
		pf pagerFlags
		af = filter.DefaultAlertFilter()
		lf lifecycleFlags
	)
	query := func() (console.AlertsQuery, error) {
		rng, err := rf.build(a.console.Clock().Now())
		return console.AlertsQuery{Range: rng, Filter: af, Pager: pf.pager()}, err
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List alerts of a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := query()
			if err != nil {
				return err
			}
			page, err := a.console.Alerts(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.printAlerts(page)
		},
	}
	rf.register(list.Flags())
	pf.register(list.Flags())
	list.Flags().StringVar(&af.Severity, "severity", filter.AllSeverity, "Low, Medium, High or Critical")
	list.Flags().StringVar(&af.Status, "status", filter.AllStatus, "Open, Acknowledged or Resolved")
	list.Flags().StringVar(&af.TagQuery, "tag-query", "", "tag query, e.g. env = 'prod'")

	get := &cobra.Command{
		Use:   "get ALERT_ID",
		Short: "Show an alert with its lifecycle and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alert, err := a.console.Alert(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(alert, nil)
		},
	}

	lifecycle := func(use, short, done string, fn lifecycleFunc) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " ALERT_ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				q, err := query()
				if err != nil {
					return err
				}
				page, err := fn(a.console, cmd.Context(), args[0], lf.lifecycle(), q)
				if err != nil {
					return err
				}
				return a.message(page.Items, "Alert %s %s", args[0], done)
			},
		}
		lf.register(c.Flags())
		return c
	}

	del := &cobra.Command{
		Use:   "delete ALERT_ID",
		Short: "Delete an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := query()
			if err != nil {
				return err
			}
			page, err := a.console.DeleteAlert(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			return a.message(page.Items, "Alert %s deleted", args[0])
		},
	}

	cmd.AddCommand(list, get,
		lifecycle("ack", "Acknowledge an alert", "acknowledged", (*console.Console).AckAlert),
		lifecycle("resolve", "Resolve an alert", "resolved", (*console.Console).ResolveAlert),
		lifecycle("note", "Add a note to an alert", "annotated", (*console.Console).NoteAlert),
		del,
	)
	return cmd
}

func (a *app) printAlerts(page types.Page[types.Alert]) error {
	return a.print(page.Items, func(w io.Writer) {
		row(w, "ID", "SEVERITY", "STATUS", "CREATED", "TEXT")
		for _, al := range page.Items {
			row(w, al.ID, al.Severity, al.Status, when(al.CTime), orDash(truncate(al.Text, 60)))
		}
		fmt.Fprintf(w, "\n%d of %d alerts\n", len(page.Items), page.Total)
	})
}

func (a *app) eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Query and delete events",
	}

	var (
		rf rangeFlags
		pf pagerFlags
		ef filter.EventFilter
	)
	query := func() (console.EventsQuery, error) {
		rng, err := rf.build(a.console.Clock().Now())
		return console.EventsQuery{Range: rng, Filter: ef, Pager: pf.pager()}, err
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List events of a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := query()
			if err != nil {
				return err
			}
			page, err := a.console.Events(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.printEvents(page)
		},
	}
	rf.register(list.Flags())
	pf.register(list.Flags())
	list.Flags().StringVar(&ef.TagQuery, "tag-query", "", "tag query, e.g. env = 'prod'")

	get := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Show an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := a.console.Event(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(ev, nil)
		},
	}

	del := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := query()
			if err != nil {
				return err
			}
			page, err := a.console.DeleteEvent(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			return a.message(page.Items, "Event %s deleted", args[0])
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}

func (a *app) printEvents(page types.Page[types.Event]) error {
	return a.print(page.Items, func(w io.Writer) {
		row(w, "ID", "CATEGORY", "CREATED", "DATA", "TEXT")
		for _, ev := range page.Items {
			row(w, ev.ID, orDash(ev.Category), when(ev.CTime), orDash(ev.DataID), orDash(truncate(ev.Text, 60)))
		}
		fmt.Fprintf(w, "\n%d of %d events\n", len(page.Items), page.Total)
	})
}
