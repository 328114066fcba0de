package console

import (
	"context"
	"fmt"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// AlertsQuery selects the alerts view.
type AlertsQuery struct {
	Range  filter.Range
	Filter filter.AlertFilter
	Pager  types.Pager
}

// Criteria translates the view selection into backend criteria. Fat alerts
// are always requested since the list expands lifecycle and notes inline.
func (q AlertsQuery) Criteria() (types.AlertsCriteria, error) {
	start, end, err := q.Range.Bounds()
	if err != nil {
		return types.AlertsCriteria{}, err
	}
	sevs, err := q.Filter.Severities()
	if err != nil {
		return types.AlertsCriteria{}, err
	}
	sts, err := q.Filter.Statuses()
	if err != nil {
		return types.AlertsCriteria{}, err
	}
	return types.AlertsCriteria{
		StartTime:  start,
		EndTime:    end,
		Severities: sevs,
		Statuses:   sts,
		Tags:       q.Filter.TagQuery,
		Thin:       false,
		Pager:      q.Pager,
	}, nil
}

// Alerts queries the alerts list.
func (c *Console) Alerts(ctx context.Context, q AlertsQuery) (types.Page[types.Alert], error) {
	crit, err := q.Criteria()
	if err != nil {
		return types.Page[types.Alert]{}, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
	}
	return c.backend.QueryAlerts(ctx, crit)
}

// Alert fetches one alert.
func (c *Console) Alert(ctx context.Context, alertID string) (*types.Alert, error) {
	return c.backend.GetAlert(ctx, alertID, false)
}

// Lifecycle is the operator input of an ack, resolve or note.
type Lifecycle struct {
	User  string
	Notes string
}

func (l Lifecycle) validate() error {
	if err := requireText("user", l.User); err != nil {
		return err
	}
	return requireText("notes", l.Notes)
}

// AckAlert acknowledges alertID and refetches.
func (c *Console) AckAlert(ctx context.Context, alertID string, l Lifecycle, q AlertsQuery) (types.Page[types.Alert], error) {
	if err := l.validate(); err != nil {
		return types.Page[types.Alert]{}, err
	}
	if err := c.backend.AckAlerts(ctx, []string{alertID}, l.User, l.Notes); err != nil {
		return types.Page[types.Alert]{}, err
	}
	return c.Alerts(ctx, q)
}

// ResolveAlert resolves alertID and refetches.
func (c *Console) ResolveAlert(ctx context.Context, alertID string, l Lifecycle, q AlertsQuery) (types.Page[types.Alert], error) {
	if err := l.validate(); err != nil {
		return types.Page[types.Alert]{}, err
	}
	if err := c.backend.ResolveAlerts(ctx, []string{alertID}, l.User, l.Notes); err != nil {
		return types.Page[types.Alert]{}, err
	}
	return c.Alerts(ctx, q)
}

// NoteAlert annotates alertID and refetches.
func (c *Console) NoteAlert(ctx context.Context, alertID string, l Lifecycle, q AlertsQuery) (types.Page[types.Alert], error) {
	if err := l.validate(); err != nil {
		return types.Page[types.Alert]{}, err
	}
	if err := c.backend.NoteAlert(ctx, alertID, l.User, l.Notes); err != nil {
		return types.Page[types.Alert]{}, err
	}
	return c.Alerts(ctx, q)
}

// DeleteAlert purges alertID and refetches.
func (c *Console) DeleteAlert(ctx context.Context, alertID string, q AlertsQuery) (types.Page[types.Alert], error) {
	if err := requireText("alert id", alertID); err != nil {
		return types.Page[types.Alert]{}, err
	}
	if _, err := c.backend.DeleteAlerts(ctx, types.AlertsCriteria{AlertIDs: []string{alertID}}); err != nil {
		return types.Page[types.Alert]{}, err
	}
	return c.Alerts(ctx, q)
}
