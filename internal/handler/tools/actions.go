package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const actionDefinitionExample = `{"actionPlugin": "email", "actionId": "notify-admins", "properties": {"to": "admins@example.com"}}`

func (h *Handler) RegisterActionsHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering actions handlers")

	h.add(s, newTool("hawkular_list_plugins",
		"List the action plugins deployed on the backend (e.g. email, webhook), sorted by name."),
		func(ctx context.Context, _ map[string]any) (any, error) {
			view, err := h.console.Plugins(ctx)
			if err != nil {
				return nil, err
			}
			return view.Plugins, nil
		})

	h.add(s, newTool("hawkular_get_plugin",
		"Get the properties an action of the given plugin accepts.",
		[]mcp.ToolOption{mcp.WithString("plugin", mcp.Required(), mcp.Description("Action plugin name, e.g. 'email'."))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			plugin, err := requiredArg(args, "plugin", `{"plugin": "email"}`)
			if err != nil {
				return nil, err
			}
			return h.console.PluginProperties(ctx, plugin)
		})

	h.add(s, newTool("hawkular_list_actions",
		"List action definitions, of every plugin or of one. IMPORTANT: This tool supports pagination using 'limit' and 'offset'; keep paginating while 'pagination.hasMore' is true.",
		[]mcp.ToolOption{mcp.WithString("plugin", mcp.Description("Only list definitions of this plugin (optional, default all plugins)."))},
		withPaging()),
		func(ctx context.Context, args map[string]any) (any, error) {
			defs, err := h.console.ActionDefinitions(ctx, stringArg(args, "plugin"))
			if err != nil {
				return nil, err
			}
			return paged(args, defs)
		})

	h.add(s, newTool("hawkular_get_action",
		"Get one action definition.",
		[]mcp.ToolOption{
			mcp.WithString("plugin", mcp.Required(), mcp.Description("Action plugin name.")),
			mcp.WithString("actionId", mcp.Required(), mcp.Description("Action id.")),
		}),
		func(ctx context.Context, args map[string]any) (any, error) {
			plugin, err := requiredArg(args, "plugin", `{"plugin": "email", "actionId": "notify-admins"}`)
			if err != nil {
				return nil, err
			}
			id, err := requiredArg(args, "actionId", `{"plugin": "email", "actionId": "notify-admins"}`)
			if err != nil {
				return nil, err
			}
			return h.console.ActionDefinition(ctx, plugin, id)
		})

	h.add(s, newTool("hawkular_create_action",
		"Create an action definition from its JSON document.",
		[]mcp.ToolOption{mcp.WithString("definition", mcp.Required(), mcp.Description("Action definition JSON, e.g. "+actionDefinitionExample))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			defs, err := h.console.CreateActionDefinition(ctx, stringArg(args, "definition"), "")
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: "Action created", Total: len(defs)}, nil
		})

	h.add(s, newTool("hawkular_update_action",
		"Replace an action definition with a JSON document. Plugin and id are read from the document.",
		[]mcp.ToolOption{mcp.WithString("definition", mcp.Required(), mcp.Description("Action definition JSON, e.g. "+actionDefinitionExample))}),
		func(ctx context.Context, args map[string]any) (any, error) {
			defs, err := h.console.UpdateActionDefinition(ctx, "", "", stringArg(args, "definition"), "")
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: "Action updated", Total: len(defs)}, nil
		})

	h.add(s, newTool("hawkular_delete_action",
		"Delete an action definition.",
		[]mcp.ToolOption{
			mcp.WithString("plugin", mcp.Required(), mcp.Description("Action plugin name.")),
			mcp.WithString("actionId", mcp.Required(), mcp.Description("Action id.")),
		}),
		func(ctx context.Context, args map[string]any) (any, error) {
			plugin, err := requiredArg(args, "plugin", `{"plugin": "email", "actionId": "notify-admins"}`)
			if err != nil {
				return nil, err
			}
			id, err := requiredArg(args, "actionId", `{"plugin": "email", "actionId": "notify-admins"}`)
			if err != nil {
				return nil, err
			}
			defs, err := h.console.DeleteActionDefinition(ctx, plugin, id, "")
			if err != nil {
				return nil, err
			}
			return mutationResult{Message: fmt.Sprintf("Action %s/%s deleted", plugin, id), Total: len(defs)}, nil
		})
}
