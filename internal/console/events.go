package console

import (
	"context"
	"fmt"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// EventsQuery selects the events view.
type EventsQuery struct {
	Range  filter.Range
	Filter filter.EventFilter
	Pager  types.Pager
}

// Criteria translates the view selection into backend criteria. Only plain
// events are listed; alerts have their own view.
func (q EventsQuery) Criteria() (types.EventsCriteria, error) {
	start, end, err := q.Range.Bounds()
	if err != nil {
		return types.EventsCriteria{}, err
	}
	return types.EventsCriteria{
		StartTime: start,
		EndTime:   end,
		Tags:      q.Filter.TagQuery,
		EventType: types.EventTypeEvent,
		Thin:      false,
		Pager:     q.Pager,
	}, nil
}

// Events queries the events list.
func (c *Console) Events(ctx context.Context, q EventsQuery) (types.Page[types.Event], error) {
	crit, err := q.Criteria()
	if err != nil {
		return types.Page[types.Event]{}, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
	}
	return c.backend.QueryEvents(ctx, crit)
}

// Event fetches one event.
func (c *Console) Event(ctx context.Context, eventID string) (*types.Event, error) {
	return c.backend.GetEvent(ctx, eventID, false)
}

// DeleteEvent purges eventID and refetches.
func (c *Console) DeleteEvent(ctx context.Context, eventID string, q EventsQuery) (types.Page[types.Event], error) {
	if err := requireText("event id", eventID); err != nil {
		return types.Page[types.Event]{}, err
	}
	if _, err := c.backend.DeleteEvents(ctx, types.EventsCriteria{EventIDs: []string{eventID}}); err != nil {
		return types.Page[types.Event]{}, err
	}
	return c.Events(ctx, q)
}
