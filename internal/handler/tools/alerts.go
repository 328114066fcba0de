package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

func (h *Handler) alertsQuery(args map[string]any) (console.AlertsQuery, error) {
	rng, err := rangeArg(args, h.console.Clock().Now())
	if err != nil {
		return console.AlertsQuery{}, err
	}
	return console.AlertsQuery{Range: rng, Filter: alertFilterArg(args)}, nil
}

func (h *Handler) eventsQuery(args map[string]any) (console.EventsQuery, error) {
	rng, err := rangeArg(args, h.console.Clock().Now())
	if err != nil {
		return console.EventsQuery{}, err
	}
	return console.EventsQuery{Range: rng, Filter: filter.EventFilter{TagQuery: stringArg(args, "tagQuery")}}, nil
}

func (h *Handler) RegisterAlertsHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering alerts handlers")

	lifecycle := []mcp.ToolOption{
		mcp.WithString("alertId", mcp.Required(), mcp.Description("Alert id.")),
		mcp.WithString("user", mcp.Required(), mcp.Description(userDesc)),
		mcp.WithString("notes", mcp.Required(), mcp.Description(notesDesc)),
	}

	h.add(s, newTool("hawkular_list_alerts",
		"List alerts raised in a time window, with lifecycle and notes. Filter by severity, status and tag query. IMPORTANT: This tool supports pagination using 'limit' and 'offset'. When searching for a specific alert, ALWAYS check 'pagination.hasMore' and keep paginating with 'nextOffset' until it is false.",
		withRange(),
		[]mcp.ToolOption{
			mcp.WithString("severity", mcp.Description("Severity filter (optional): Low, Medium, High or Critical. Default: all."),
				mcp.Enum(filter.SeverityOptions...)),
			mcp.WithString("status", mcp.Description("Status filter (optional): Open, Acknowledged or Resolved. Default: all."),
				mcp.Enum(filter.StatusOptions...)),
			mcp.WithString("tagQuery", mcp.Description("Tag query (optional), e.g. 'env|prod'.")),
		},
		withPaging()),
		func(ctx context.Context, args map[string]any) (any, error) {
			q, err := h.alertsQuery(args)
			if err != nil {
				return nil, err
			}
			page, err := h.console.Alerts(ctx, q)
			if err != nil {
				return nil, err
			}
			return paged(args, page.Items)
		})

	h.add(s, newTool("hawkular_get_alert",
		"Get one alert with its eval sets, lifecycle and notes.",
		[]mcp.ToolOption{mcp.WithString("alertId", mcp.Required(), mcp.Description("Alert id."))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "alertId", `{"alertId": "cpu-high-1700000000000-1a2b"}`)
			if err != nil {
				return nil, err
			}
			return h.console.Alert(ctx, id)
		})

	h.add(s, newTool("hawkular_ack_alert",
		"Acknowledge an open alert. User and notes are required.",
		lifecycle),
		func(ctx context.Context, args map[string]any) (any, error) {
			return h.lifecycle(ctx, args, "acknowledged", h.console.AckAlert)
		})

	h.add(s, newTool("hawkular_resolve_alert",
		"Resolve an alert. User and notes are required.",
		lifecycle),
		func(ctx context.Context, args map[string]any) (any, error) {
			return h.lifecycle(ctx, args, "resolved", h.console.ResolveAlert)
		})

	h.add(s, newTool("hawkular_note_alert",
		"Add a note to an alert. User and notes are required.",
		lifecycle),
		func(ctx context.Context, args map[string]any) (any, error) {
			return h.lifecycle(ctx, args, "annotated", h.console.NoteAlert)
		})

	h.add(s, newTool("hawkular_delete_alert",
		"Delete an alert permanently.",
		[]mcp.ToolOption{mcp.WithString("alertId", mcp.Required(), mcp.Description("Alert id."))},
		withRange()),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "alertId", `{"alertId": "cpu-high-1700000000000-1a2b"}`)
			if err != nil {
				return nil, err
			}
			q, err := h.alertsQuery(args)
			if err != nil {
				return nil, err
			}
			page, err := h.console.DeleteAlert(ctx, id, q)
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: fmt.Sprintf("Alert %s deleted", id), Total: page.Total}, nil
		})
}

type lifecycleFunc func(ctx context.Context, alertID string, l console.Lifecycle, q console.AlertsQuery) (types.Page[types.Alert], error)

func (h *Handler) lifecycle(ctx context.Context, args map[string]any, done string, fn lifecycleFunc) (any, error) {
	id, err := requiredArg(args, "alertId", `{"alertId": "cpu-high-1700000000000-1a2b", "user": "jdoe", "notes": "investigating"}`)
	if err != nil {
		return nil, err
	}
	q, err := h.alertsQuery(args)
	if err != nil {
		return nil, err
	}
	page, err := fn(ctx, id, lifecycleArg(args), q)
	if err != nil {
		return nil, err
	}
	return mutationResult{Message: fmt.Sprintf("Alert %s %s", id, done), Total: page.Total}, nil
}

func (h *Handler) RegisterEventsHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering events handlers")

	h.add(s, newTool("hawkular_list_events",
		"List events (not alerts) raised in a time window. IMPORTANT: This tool supports pagination using 'limit' and 'offset'; keep paginating while 'pagination.hasMore' is true.",
		withRange(),
		[]mcp.ToolOption{mcp.WithString("tagQuery", mcp.Description("Tag query (optional), e.g. 'env|prod'."))},
		withPaging()),
		func(ctx context.Context, args map[string]any) (any, error) {
			q, err := h.eventsQuery(args)
			if err != nil {
				return nil, err
			}
			page, err := h.console.Events(ctx, q)
			if err != nil {
				return nil, err
			}
			return paged(args, page.Items)
		})

	h.add(s, newTool("hawkular_get_event",
		"Get one event with its eval sets.",
		[]mcp.ToolOption{mcp.WithString("eventId", mcp.Required(), mcp.Description("Event id."))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "eventId", `{"eventId": "disk-full-1700000000000-3c4d"}`)
			if err != nil {
				return nil, err
			}
			return h.console.Event(ctx, id)
		})

	h.add(s, newTool("hawkular_delete_event",
		"Delete an event permanently.",
		[]mcp.ToolOption{mcp.WithString("eventId", mcp.Required(), mcp.Description("Event id."))},
		withRange()),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "eventId", `{"eventId": "disk-full-1700000000000-3c4d"}`)
			if err != nil {
				return nil, err
			}
			q, err := h.eventsQuery(args)
			if err != nil {
				return nil, err
			}
			page, err := h.console.DeleteEvent(ctx, id, q)
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: fmt.Sprintf("Event %s deleted", id), Total: page.Total}, nil
		})
}
