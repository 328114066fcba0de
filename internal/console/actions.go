package console

import (
	"context"
	"fmt"
	"sort"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// AllPlugins is the plugin filter option that selects every plugin.
const AllPlugins = "All Plugins"

// PluginsView is the sorted plugin list and the filter options built from it.
type PluginsView struct {
	Plugins []string
	Options []string
}

// Plugins lists the action plugins sorted, with AllPlugins as first option.
func (c *Console) Plugins(ctx context.Context) (*PluginsView, error) {
	plugins, err := c.backend.ListPlugins(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(plugins)
	options := append([]string{AllPlugins}, plugins...)
	return &PluginsView{Plugins: plugins, Options: options}, nil
}

// PluginProperties returns the properties an action of plugin accepts.
func (c *Console) PluginProperties(ctx context.Context, plugin string) ([]string, error) {
	return c.backend.GetPlugin(ctx, plugin)
}

type actionKey struct {
	Plugin string `json:"plugin"`
	ID     string `json:"id"`
}

// ActionDefinitions fetches the action definitions of pluginFilter, or of
// every plugin when the filter is empty or AllPlugins.
func (c *Console) ActionDefinitions(ctx context.Context, pluginFilter string) ([]types.ActionDefinition, error) {
	ctx, span := c.span(ctx, "console.ActionDefinitions")
	defer span.End()

	var keys []actionKey
	if pluginFilter == "" || pluginFilter == AllPlugins {
		byPlugin, err := c.backend.ListActionIDs(ctx)
		if err != nil {
			return nil, err
		}
		plugins := make([]string, 0, len(byPlugin))
		for p := range byPlugin {
			plugins = append(plugins, p)
		}
		sort.Strings(plugins)
		for _, p := range plugins {
			for _, id := range byPlugin[p] {
				keys = append(keys, actionKey{Plugin: p, ID: id})
			}
		}
	} else {
		ids, err := c.backend.ListActionIDsByPlugin(ctx, pluginFilter)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			keys = append(keys, actionKey{Plugin: pluginFilter, ID: id})
		}
	}

	return fanOut(ctx, c, "actions", keys, func(ctx context.Context, k actionKey) (types.ActionDefinition, error) {
		def, err := c.backend.GetActionDefinition(ctx, k.Plugin, k.ID)
		if err != nil {
			return types.ActionDefinition{}, err
		}
		return *def, nil
	})
}

// ActionDefinition fetches one action definition.
func (c *Console) ActionDefinition(ctx context.Context, plugin, actionID string) (*types.ActionDefinition, error) {
	return c.backend.GetActionDefinition(ctx, plugin, actionID)
}

// CreateActionDefinition creates a definition from operator JSON and refetches.
func (c *Console) CreateActionDefinition(ctx context.Context, jsonText, pluginFilter string) ([]types.ActionDefinition, error) {
	var def types.ActionDefinition
	if err := decodeJSON(jsonText, &def); err != nil {
		return nil, err
	}
	if _, err := c.backend.CreateActionDefinition(ctx, &def); err != nil {
		return nil, err
	}
	return c.ActionDefinitions(ctx, pluginFilter)
}

// UpdateActionDefinition replaces plugin/actionID with operator JSON and
// refetches. Empty plugin or actionID take the document's values; a
// document naming another definition is rejected.
func (c *Console) UpdateActionDefinition(ctx context.Context, plugin, actionID, jsonText, pluginFilter string) ([]types.ActionDefinition, error) {
	var def types.ActionDefinition
	if err := decodeJSON(jsonText, &def); err != nil {
		return nil, err
	}
	if err := pinField("actionPlugin", plugin, &def.ActionPlugin); err != nil {
		return nil, err
	}
	if err := pinField("actionId", actionID, &def.ActionID); err != nil {
		return nil, err
	}
	if err := c.backend.UpdateActionDefinition(ctx, &def); err != nil {
		return nil, err
	}
	return c.ActionDefinitions(ctx, pluginFilter)
}

// pinField fills an empty document field from want and rejects a
// conflicting one.
func pinField(name, want string, got *string) error {
	switch {
	case want == "":
	case *got == "":
		*got = want
	case *got != want:
		return fmt.Errorf("%w: %s %q does not match %q", client.ErrInvalidInput, name, *got, want)
	}
	return nil
}

// DeleteActionDefinition removes a definition and refetches.
func (c *Console) DeleteActionDefinition(ctx context.Context, plugin, actionID, pluginFilter string) ([]types.ActionDefinition, error) {
	if err := c.backend.DeleteActionDefinition(ctx, plugin, actionID); err != nil {
		return nil, err
	}
	return c.ActionDefinitions(ctx, pluginFilter)
}
