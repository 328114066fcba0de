package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/dashboard"
	"github.com/hawkular/hawkular-alerts-console/pkg/timeutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

type dashboardResult struct {
	Start         time.Time                `json:"start"`
	End           time.Time                `json:"end"`
	TotalActive   int                      `json:"totalActive"`
	BySeverity    map[types.Severity]int   `json:"bySeverity"`
	Active        []dashboard.ActiveCounts `json:"active"`
	ShowTimeline  bool                     `json:"showTimeline"`
	TimelineStart time.Time                `json:"timelineStart"`
	TimelineEnd   time.Time                `json:"timelineEnd"`
	Timeline      []timelineGroup          `json:"timeline"`
}

type timelineGroup struct {
	Name   string          `json:"name"`
	Color  string          `json:"color,omitempty"`
	Points []timelinePoint `json:"points"`
}

type timelinePoint struct {
	ID       string         `json:"id"`
	Date     time.Time      `json:"date"`
	Text     string         `json:"text,omitempty"`
	Severity types.Severity `json:"severity,omitempty"`
	Status   types.Status   `json:"status,omitempty"`
}

type detailResult struct {
	ID         string         `json:"id"`
	Alert      *types.Alert   `json:"alert,omitempty"`
	Event      *types.Event   `json:"event,omitempty"`
	Actions    []types.Action `json:"actions"`
	Sections   int            `json:"sections"`
	ParseError string         `json:"parseError,omitempty"`
}

func newDashboardResult(s *dashboard.Summary) dashboardResult {
	res := dashboardResult{
		Start:         timeutil.FromMillis(s.Start),
		End:           timeutil.FromMillis(s.End),
		TotalActive:   s.TotalActive(),
		BySeverity:    s.BySeverity,
		Active:        s.Active,
		ShowTimeline:  s.ShowTimeline,
		TimelineStart: s.TimelineStart,
		TimelineEnd:   s.TimelineEnd,
	}
	for _, g := range s.Timeline {
		tg := timelineGroup{Name: g.Name, Color: g.Color, Points: make([]timelinePoint, 0, len(g.Points))}
		for _, p := range g.Points {
			tp := timelinePoint{ID: p.ID(), Date: p.Date}
			switch {
			case p.Alert != nil:
				tp.Text, tp.Severity, tp.Status = p.Alert.Text, p.Alert.Severity, p.Alert.Status
			case p.Event != nil:
				tp.Text = p.Event.Text
			}
			tg.Points = append(tg.Points, tp)
		}
		res.Timeline = append(res.Timeline, tg)
	}
	return res
}

func (h *Handler) RegisterDashboardHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering dashboard handlers")

	h.add(s, newTool("hawkular_dashboard",
		"Summarize a time window: unresolved alerts per severity, open/acknowledged alerts per severity and the timeline of open, acknowledged and resolved alerts and events. Use hawkular_event_details with point ids for the full documents.",
		withRange()),
		func(ctx context.Context, args map[string]any) (any, error) {
			rng, err := rangeArg(args, h.console.Clock().Now())
			if err != nil {
				return nil, err
			}
			summary, err := h.console.Dashboard(ctx, rng)
			if err != nil {
				return nil, err
			}
			return newDashboardResult(summary), nil
		})

	h.add(s, newTool("hawkular_event_details",
		"Expand dashboard timeline points: the alert or event document with decoded eval set contexts and the actions executed for it.",
		[]mcp.ToolOption{mcp.WithString("ids", mcp.Required(), mcp.Description("Comma separated alert or event ids from hawkular_dashboard."))},
		withRange()),
		func(ctx context.Context, args map[string]any) (any, error) {
			raw, err := requiredArg(args, "ids", `{"ids": "cpu-high-1700000000000-1a2b,disk-full-1700000000000-3c4d"}`)
			if err != nil {
				return nil, err
			}
			rng, err := rangeArg(args, h.console.Clock().Now())
			if err != nil {
				return nil, err
			}
			summary, err := h.console.Dashboard(ctx, rng)
			if err != nil {
				return nil, err
			}

			wanted := make(map[string]bool)
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					wanted[id] = true
				}
			}
			var points []dashboard.Point
			for _, p := range summary.Sorted() {
				if wanted[p.ID()] {
					points = append(points, p)
					delete(wanted, p.ID())
				}
			}
			if len(points) == 0 {
				return nil, fmt.Errorf("%w: none of the ids is on the timeline of the selected range", client.ErrInvalidInput)
			}

			details, err := h.console.EventDetails(ctx, points)
			if err != nil {
				return nil, err
			}
			out := make([]detailResult, 0, len(details))
			for _, d := range details {
				r := detailResult{ID: d.ID(), Alert: d.Alert, Event: d.Event, Actions: d.Actions, Sections: d.Sections}
				if d.ParseErr != nil {
					r.ParseError = d.ParseErr.Error()
				}
				out = append(out, r)
			}
			return out, nil
		})
}
