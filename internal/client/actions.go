package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// ListActionIDs returns every action id grouped by plugin.
func (a *Alerts) ListActionIDs(ctx context.Context) (types.ActionIDs, error) {
	ids := types.ActionIDs{}
	if _, err := a.do(ctx, request{method: http.MethodGet, path: "/actions"}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListActionIDsByPlugin returns the action ids defined for plugin.
func (a *Alerts) ListActionIDsByPlugin(ctx context.Context, plugin string) ([]string, error) {
	if plugin == "" {
		return nil, fmt.Errorf("%w: plugin is required", ErrInvalidInput)
	}
	var ids []string
	if _, err := a.do(ctx, request{method: http.MethodGet, path: escape("actions", "plugin", plugin)}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetActionDefinition fetches one action definition.
func (a *Alerts) GetActionDefinition(ctx context.Context, plugin, actionID string) (*types.ActionDefinition, error) {
	if plugin == "" || actionID == "" {
		return nil, fmt.Errorf("%w: plugin and action id are required", ErrInvalidInput)
	}
	var def types.ActionDefinition
	if _, err := a.do(ctx, request{method: http.MethodGet, path: escape("actions", plugin, actionID)}, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// CreateActionDefinition stores a new action definition.
func (a *Alerts) CreateActionDefinition(ctx context.Context, def *types.ActionDefinition) (*types.ActionDefinition, error) {
	if err := validDefinition(def); err != nil {
		return nil, err
	}
	var created types.ActionDefinition
	if _, err := a.do(ctx, request{method: http.MethodPost, path: "/actions", body: def}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateActionDefinition replaces an existing action definition.
func (a *Alerts) UpdateActionDefinition(ctx context.Context, def *types.ActionDefinition) error {
	if err := validDefinition(def); err != nil {
		return err
	}
	_, err := a.do(ctx, request{method: http.MethodPut, path: "/actions", body: def}, nil)
	return err
}

// DeleteActionDefinition removes one action definition.
func (a *Alerts) DeleteActionDefinition(ctx context.Context, plugin, actionID string) error {
	if plugin == "" || actionID == "" {
		return fmt.Errorf("%w: plugin and action id are required", ErrInvalidInput)
	}
	_, err := a.do(ctx, request{method: http.MethodDelete, path: escape("actions", plugin, actionID)}, nil)
	return err
}

// ListActionsHistory lists executed actions matching c.
func (a *Alerts) ListActionsHistory(ctx context.Context, c types.ActionsCriteria) (types.Page[types.Action], error) {
	return list[types.Action](ctx, a, "/actions/history", c.Values())
}

// ListPlugins returns the names of the registered action plugins.
func (a *Alerts) ListPlugins(ctx context.Context) ([]string, error) {
	var plugins []string
	if _, err := a.do(ctx, request{method: http.MethodGet, path: "/plugins"}, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// GetPlugin returns the property names a plugin accepts.
func (a *Alerts) GetPlugin(ctx context.Context, plugin string) ([]string, error) {
	if plugin == "" {
		return nil, fmt.Errorf("%w: plugin is required", ErrInvalidInput)
	}
	var props []string
	if _, err := a.do(ctx, request{method: http.MethodGet, path: escape("plugins", plugin)}, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func validDefinition(def *types.ActionDefinition) error {
	if def == nil || def.ActionPlugin == "" || def.ActionID == "" {
		return fmt.Errorf("%w: actionPlugin and actionId are required", ErrInvalidInput)
	}
	return nil
}
