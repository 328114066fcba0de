package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// QueryAlerts lists alerts matching c.
func (a *Alerts) QueryAlerts(ctx context.Context, c types.AlertsCriteria) (types.Page[types.Alert], error) {
	return list[types.Alert](ctx, a, "/", c.Values())
}

// GetAlert fetches one alert.
func (a *Alerts) GetAlert(ctx context.Context, alertID string, thin bool) (*types.Alert, error) {
	if alertID == "" {
		return nil, fmt.Errorf("%w: alert id is required", ErrInvalidInput)
	}
	q := url.Values{}
	if thin {
		q.Set("thin", "true")
	}
	var alert types.Alert
	if _, err := a.do(ctx, request{method: http.MethodGet, path: escape("alert", alertID), query: q}, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// AckAlerts acknowledges alerts on behalf of ackBy.
func (a *Alerts) AckAlerts(ctx context.Context, alertIDs []string, ackBy, ackNotes string) error {
	if len(alertIDs) == 0 {
		return fmt.Errorf("%w: at least one alert id is required", ErrInvalidInput)
	}
	q := url.Values{}
	q.Set("alertIds", strings.Join(alertIDs, ","))
	q.Set("ackBy", ackBy)
	q.Set("ackNotes", ackNotes)
	_, err := a.do(ctx, request{method: http.MethodPut, path: "/ack", query: q}, nil)
	return err
}

// ResolveAlerts resolves alerts on behalf of resolvedBy.
func (a *Alerts) ResolveAlerts(ctx context.Context, alertIDs []string, resolvedBy, resolvedNotes string) error {
	if len(alertIDs) == 0 {
		return fmt.Errorf("%w: at least one alert id is required", ErrInvalidInput)
	}
	q := url.Values{}
	q.Set("alertIds", strings.Join(alertIDs, ","))
	q.Set("resolvedBy", resolvedBy)
	q.Set("resolvedNotes", resolvedNotes)
	_, err := a.do(ctx, request{method: http.MethodPut, path: "/resolve", query: q}, nil)
	return err
}

// NoteAlert appends a note to an alert.
func (a *Alerts) NoteAlert(ctx context.Context, alertID, user, text string) error {
	if alertID == "" {
		return fmt.Errorf("%w: alert id is required", ErrInvalidInput)
	}
	q := url.Values{}
	q.Set("user", user)
	q.Set("text", text)
	_, err := a.do(ctx, request{method: http.MethodPut, path: escape("note", alertID), query: q}, nil)
	return err
}

// DeleteAlerts deletes the alerts matching c and returns how many were removed.
func (a *Alerts) DeleteAlerts(ctx context.Context, c types.AlertsCriteria) (int, error) {
	q := c.Values()
	q.Del("thin")
	var res deleted
	if _, err := a.do(ctx, request{method: http.MethodPut, path: "/delete", query: q}, &res); err != nil {
		return 0, err
	}
	return res.count()
}
