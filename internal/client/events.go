package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// QueryEvents lists events matching c.
func (a *Alerts) QueryEvents(ctx context.Context, c types.EventsCriteria) (types.Page[types.Event], error) {
	return list[types.Event](ctx, a, "/events", c.Values())
}

// GetEvent fetches one event.
func (a *Alerts) GetEvent(ctx context.Context, eventID string, thin bool) (*types.Event, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	q := url.Values{}
	if thin {
		q.Set("thin", "true")
	}
	var ev types.Event
	if _, err := a.do(ctx, request{method: http.MethodGet, path: escape("events", "event", eventID), query: q}, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvents deletes the events matching c and returns how many were removed.
func (a *Alerts) DeleteEvents(ctx context.Context, c types.EventsCriteria) (int, error) {
	q := c.Values()
	q.Del("thin")
	var res deleted
	if _, err := a.do(ctx, request{method: http.MethodPut, path: "/events/delete", query: q}, &res); err != nil {
		return 0, err
	}
	return res.count()
}
