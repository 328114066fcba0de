package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/search"
)

const fullTriggerExample = `{"trigger": {"id": "cpu-high", "name": "CPU high", "severity": "HIGH", "enabled": true}, "conditions": [{"type": "THRESHOLD", "dataId": "cpu", "operator": "GT", "threshold": 90}]}`

// mutationResult is returned by tools that change definitions.
type mutationResult struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
}

func (h *Handler) RegisterTriggersHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering triggers handlers")

	h.add(s, newTool("hawkular_list_triggers",
		"List trigger definitions with their conditions and dampenings. IMPORTANT: This tool supports pagination using 'limit' and 'offset'. The response includes 'pagination' metadata with 'total', 'hasMore' and 'nextOffset'; keep paginating while 'hasMore' is true before concluding a trigger does not exist.",
		[]mcp.ToolOption{mcp.WithString("tags", mcp.Description("Tag filter (optional), e.g. 'env|prod' or 'env|*'."))},
		withPaging()),
		func(ctx context.Context, args map[string]any) (any, error) {
			view, err := h.console.Triggers(ctx, console.TriggerQuery{Tags: stringArg(args, "tags")})
			if err != nil {
				return nil, err
			}
			return paged(args, view.Triggers)
		})

	h.add(s, newTool("hawkular_get_trigger",
		"Get one full trigger (trigger, conditions, dampenings) by id.",
		[]mcp.ToolOption{mcp.WithString("triggerId", mcp.Required(), mcp.Description("Trigger id."))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "triggerId", `{"triggerId": "cpu-high"}`)
			if err != nil {
				return nil, err
			}
			return h.console.Trigger(ctx, id)
		})

	h.add(s, newTool("hawkular_create_trigger",
		"Create a full trigger from its JSON document. The backend validates the definition.",
		[]mcp.ToolOption{mcp.WithString("definition", mcp.Required(), mcp.Description("Full trigger JSON, e.g. "+fullTriggerExample))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			view, err := h.console.CreateTrigger(ctx, stringArg(args, "definition"), console.TriggerQuery{})
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: "Trigger created", Total: len(view.Triggers)}, nil
		})

	h.add(s, newTool("hawkular_update_trigger",
		"Replace a full trigger with a JSON document. Get the current one with hawkular_get_trigger first so no field is lost.",
		[]mcp.ToolOption{
			mcp.WithString("triggerId", mcp.Required(), mcp.Description("Trigger id.")),
			mcp.WithString("definition", mcp.Required(), mcp.Description("Full trigger JSON.")),
		}),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "triggerId", `{"triggerId": "cpu-high"}`)
			if err != nil {
				return nil, err
			}
			view, err := h.console.UpdateTrigger(ctx, id, stringArg(args, "definition"), console.TriggerQuery{})
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: fmt.Sprintf("Trigger %s updated", id), Total: len(view.Triggers)}, nil
		})

	h.add(s, newTool("hawkular_delete_trigger",
		"Delete a trigger definition.",
		[]mcp.ToolOption{mcp.WithString("triggerId", mcp.Required(), mcp.Description("Trigger id."))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "triggerId", `{"triggerId": "cpu-high"}`)
			if err != nil {
				return nil, err
			}
			view, err := h.console.DeleteTrigger(ctx, id, console.TriggerQuery{})
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: fmt.Sprintf("Trigger %s deleted", id), Total: len(view.Triggers)}, nil
		})

	h.add(s, newTool("hawkular_enable_trigger",
		"Enable or disable a trigger.",
		[]mcp.ToolOption{
			mcp.WithString("triggerId", mcp.Required(), mcp.Description("Trigger id.")),
			mcp.WithString("enabled", mcp.Description("'true' (default) to enable, 'false' to disable.")),
		}),
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requiredArg(args, "triggerId", `{"triggerId": "cpu-high", "enabled": "false"}`)
			if err != nil {
				return nil, err
			}
			enabled, err := boolArg(args, "enabled", true)
			if err != nil {
				return nil, err
			}
			view, err := h.console.SetTriggerEnabled(ctx, id, enabled, console.TriggerQuery{})
			if err != nil {
				return nil, err
			}
			state := "enabled"
			if !enabled {
				state = "disabled"
			}
			return mutationResult{Message: fmt.Sprintf("Trigger %s %s", id, state), Total: len(view.Triggers)}, nil
		})

	h.add(s, newTool("hawkular_search_definitions",
		"Search trigger and action definitions by text. Query string syntax: 'cpu', '+kind:action plugin:email', 'severity:HIGH', 'tags:env*'. The index is built on the first search of a tenant; pass refresh='true' after definitions changed.",
		[]mcp.ToolOption{
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query.")),
			mcp.WithString("limit", mcp.Description("Maximum number of hits. Default: 20.")),
			mcp.WithString("refresh", mcp.Description("'true' to refetch definitions before searching.")),
		}),
		func(ctx context.Context, args map[string]any) (any, error) {
			query, err := requiredArg(args, "query", `{"query": "cpu"}`)
			if err != nil {
				return nil, err
			}
			limit, err := intArg(args, "limit", search.DefaultLimit)
			if err != nil {
				return nil, err
			}
			refresh, err := boolArg(args, "refresh", false)
			if err != nil {
				return nil, err
			}
			return h.search(ctx, query, limit, refresh)
		})
}

// search queries the index of the calling tenant, building it from fresh
// definitions when there is none yet or refresh is set.
func (h *Handler) search(ctx context.Context, query string, limit int, refresh bool) ([]search.Hit, error) {
	tenant := h.tenant(ctx)

	h.indexMutex.Lock()
	defer h.indexMutex.Unlock()

	idx, ok := h.indexes.Get(tenant)
	if !ok || refresh {
		view, err := h.console.Triggers(ctx, console.TriggerQuery{})
		if err != nil {
			return nil, err
		}
		actions, err := h.console.ActionDefinitions(ctx, console.AllPlugins)
		if err != nil {
			return nil, err
		}
		if !ok {
			if idx, err = search.New(h.logger); err != nil {
				return nil, err
			}
			h.indexes.Add(tenant, idx)
		}
		if err := idx.Rebuild(view.Triggers, actions); err != nil {
			return nil, err
		}
		h.logger.Debug("Search index refreshed", zap.String("tenant", tenant))
	}
	return idx.Search(query, limit)
}
