package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// ListTriggers lists trigger definitions matching c.
func (a *Alerts) ListTriggers(ctx context.Context, c types.TriggersCriteria) (types.Page[types.Trigger], error) {
	return list[types.Trigger](ctx, a, "/triggers", c.Values())
}

// GetFullTrigger fetches a trigger with its dampenings and conditions.
func (a *Alerts) GetFullTrigger(ctx context.Context, triggerID string) (*types.FullTrigger, error) {
	if triggerID == "" {
		return nil, fmt.Errorf("%w: trigger id is required", ErrInvalidInput)
	}
	var ft types.FullTrigger
	if _, err := a.do(ctx, request{method: http.MethodGet, path: escape("triggers", "trigger", triggerID)}, &ft); err != nil {
		return nil, err
	}
	return &ft, nil
}

// CreateFullTrigger creates a trigger and returns the stored definition.
func (a *Alerts) CreateFullTrigger(ctx context.Context, ft *types.FullTrigger) (*types.FullTrigger, error) {
	if ft == nil || ft.Trigger == nil {
		return nil, fmt.Errorf("%w: trigger is required", ErrInvalidInput)
	}
	var created types.FullTrigger
	if _, err := a.do(ctx, request{method: http.MethodPost, path: "/triggers/trigger", body: ft}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFullTrigger replaces the trigger triggerID.
func (a *Alerts) UpdateFullTrigger(ctx context.Context, triggerID string, ft *types.FullTrigger) error {
	if triggerID == "" {
		return fmt.Errorf("%w: trigger id is required", ErrInvalidInput)
	}
	if ft == nil || ft.Trigger == nil {
		return fmt.Errorf("%w: trigger is required", ErrInvalidInput)
	}
	_, err := a.do(ctx, request{method: http.MethodPut, path: escape("triggers", "trigger", triggerID), body: ft}, nil)
	return err
}

// DeleteTrigger removes the trigger triggerID.
func (a *Alerts) DeleteTrigger(ctx context.Context, triggerID string) error {
	if triggerID == "" {
		return fmt.Errorf("%w: trigger id is required", ErrInvalidInput)
	}
	_, err := a.do(ctx, request{method: http.MethodDelete, path: escape("triggers", triggerID)}, nil)
	return err
}

// SetTriggersEnabled enables or disables the given triggers.
func (a *Alerts) SetTriggersEnabled(ctx context.Context, triggerIDs []string, enabled bool) error {
	if len(triggerIDs) == 0 {
		return fmt.Errorf("%w: at least one trigger id is required", ErrInvalidInput)
	}
	q := url.Values{}
	q.Set("triggerIds", strings.Join(triggerIDs, ","))
	q.Set("enabled", strconv.FormatBool(enabled))
	_, err := a.do(ctx, request{method: http.MethodPut, path: "/triggers/enabled", query: q}, nil)
	return err
}
