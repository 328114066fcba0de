package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/dashboard"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

type summaryOutput struct {
	Start       time.Time              `json:"start"`
	End         time.Time              `json:"end"`
	TotalActive int                    `json:"totalActive"`
	BySeverity  map[types.Severity]int `json:"bySeverity"`
	Active      []activeOutput         `json:"active"`
	Timeline    []groupOutput          `json:"timeline,omitempty"`
}

type activeOutput struct {
	Severity     types.Severity `json:"severity"`
	Open         int            `json:"open"`
	Acknowledged int            `json:"acknowledged"`
}

type groupOutput struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

type detailOutput struct {
	ID         string         `json:"id"`
	Alert      *types.Alert   `json:"alert,omitempty"`
	Event      *types.Event   `json:"event,omitempty"`
	Actions    []types.Action `json:"actions,omitempty"`
	Sections   int            `json:"sections"`
	ParseError string         `json:"parseError,omitempty"`
}

func newSummaryOutput(s *dashboard.Summary) summaryOutput {
	out := summaryOutput{
		Start:       timeutil.FromMillis(s.Start),
		End:         timeutil.FromMillis(s.End),
		TotalActive: s.TotalActive(),
		BySeverity:  s.BySeverity,
	}
	for _, c := range s.Active {
		out.Active = append(out.Active, activeOutput(c))
	}
	if s.ShowTimeline {
		for _, g := range s.Timeline {
			ids := make([]string, 0, len(g.Points))
			for _, p := range g.Points {
				ids = append(ids, p.ID())
			}
			out.Timeline = append(out.Timeline, groupOutput{Name: g.Name, IDs: ids})
		}
	}
	return out
}

func (a *app) dashboardCommand() *cobra.Command {
	var (
		rf      rangeFlags
		watch   bool
		details string
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show active alerts per severity and the alerts and events timeline",
		Long: `Show the dashboard of a time window: the number of active alerts per
severity, open and acknowledged counts and the timeline of open, acknowledged
and resolved alerts and events.

With --watch the dashboard is refreshed every --refresh-interval and the
window slides with the clock until interrupted. --details expands the given
timeline ids with their eval sets, lifecycle and action history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := rf.build(a.console.Clock().Now())
			if err != nil {
				return err
			}
			if watch {
				return a.watchDashboard(cmd.Context(), rng)
			}
			summary, err := a.console.Dashboard(cmd.Context(), rng)
			if err != nil {
				return err
			}
			if details != "" {
				return a.printDetails(cmd.Context(), summary, details)
			}
			return a.printSummary(summary)
		},
	}
	rf.register(cmd.Flags())
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing until interrupted")
	cmd.Flags().StringVar(&details, "details", "", "comma separated alert or event ids of the timeline to expand")
	cmd.MarkFlagsMutuallyExclusive("watch", "details")
	return cmd
}

func (a *app) watchDashboard(ctx context.Context, rng filter.Range) error {
	snaps := make(chan console.Snapshot, 1)
	p := console.NewPoller(a.console, a.cfg.Tenant, rng, a.cfg.RefreshInterval, func(s console.Snapshot) {
		// keep only the newest snapshot when printing falls behind
		select {
		case <-snaps:
		default:
		}
		snaps <- s
	})
	p.Start()
	defer p.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-snaps:
			if s.Err != nil {
				fmt.Fprintf(a.errOut, "%s Error: %s\n", datetime(s.At), client.Describe(s.Err))
				continue
			}
			if a.output == OutputTable {
				fmt.Fprintf(a.out, "--- %s\n", datetime(s.At))
			}
			if err := a.printSummary(s.Summary); err != nil {
				return err
			}
		}
	}
}

func (a *app) printSummary(s *dashboard.Summary) error {
	out := newSummaryOutput(s)
	return a.print(out, func(w io.Writer) {
		fmt.Fprintf(w, "Range:\t%s - %s\n", datetime(out.Start), datetime(out.End))
		fmt.Fprintf(w, "Active alerts:\t%d\n\n", out.TotalActive)
		row(w, "SEVERITY", "ACTIVE", "OPEN", "ACKNOWLEDGED")
		for _, c := range out.Active {
			row(w, c.Severity, out.BySeverity[c.Severity], c.Open, c.Acknowledged)
		}
		if len(out.Timeline) == 0 {
			fmt.Fprintln(w, "\nNo alerts or events in range")
			return
		}
		fmt.Fprintln(w)
		row(w, "TIMELINE", "COUNT", "IDS")
		for _, g := range out.Timeline {
			row(w, g.Name, len(g.IDs), orDash(truncate(strings.Join(g.IDs, ","), 80)))
		}
	})
}

func (a *app) printDetails(ctx context.Context, s *dashboard.Summary, ids string) error {
	wanted := map[string]bool{}
	for _, id := range strings.Split(ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	var points []dashboard.Point
	for _, p := range s.Sorted() {
		if wanted[p.ID()] {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return fmt.Errorf("%w: none of the ids is on the timeline of the selected range", client.ErrInvalidInput)
	}
	details, err := a.console.EventDetails(ctx, points)
	if err != nil {
		return err
	}
	out := make([]detailOutput, 0, len(details))
	for _, d := range details {
		o := detailOutput{ID: d.ID(), Alert: d.Alert, Event: d.Event, Actions: d.Actions, Sections: d.Sections}
		if d.ParseErr != nil {
			o.ParseError = d.ParseErr.Error()
		}
		out = append(out, o)
	}
	return a.print(out, func(w io.Writer) {
		row(w, "ID", "KIND", "CREATED", "SECTIONS", "ACTIONS")
		for _, d := range out {
			kind, ctime := "event", int64(0)
			if d.Alert != nil {
				kind, ctime = "alert "+string(d.Alert.Status), d.Alert.CTime
			} else if d.Event != nil {
				ctime = d.Event.CTime
			}
			actions := make([]string, 0, len(d.Actions))
			for _, act := range d.Actions {
				actions = append(actions, act.ActionPlugin+"/"+act.ActionID+" "+orDash(act.Result))
			}
			row(w, d.ID, kind, when(ctime), d.Sections, orDash(strings.Join(actions, "; ")))
		}
	})
}
