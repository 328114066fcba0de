package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/dashboard"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// Dashboard fetches alerts and events of rng concurrently and summarizes
// them. Both requests must succeed.
func (c *Console) Dashboard(ctx context.Context, rng filter.Range) (*dashboard.Summary, error) {
	ctx, span := c.span(ctx, "console.Dashboard")
	defer span.End()

	start, end, err := rng.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
	}

	var (
		alerts types.Page[types.Alert]
		events types.Page[types.Event]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		alerts, err = c.backend.QueryAlerts(gctx, types.AlertsCriteria{StartTime: start, EndTime: end, Thin: false})
		return err
	})
	g.Go(func() error {
		var err error
		events, err = c.backend.QueryEvents(gctx, types.EventsCriteria{
			StartTime: start,
			EndTime:   end,
			EventType: types.EventTypeEvent,
			Thin:      false,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("Dashboard updated",
		zap.Int("alerts", len(alerts.Items)),
		zap.Int("events", len(events.Items)))
	return dashboard.Build(alerts.Items, events.Items, start, end), nil
}

type indexedActions struct {
	index   int
	actions []types.Action
}

// EventDetails expands timeline points: eval set contexts are decoded and
// the action history of every point is fetched concurrently. A point whose
// history cannot be fetched is still returned, without actions.
func (c *Console) EventDetails(ctx context.Context, points []dashboard.Point) ([]*dashboard.Detail, error) {
	ctx, span := c.span(ctx, "console.EventDetails")
	defer span.End()

	details := make([]*dashboard.Detail, len(points))
	idx := make([]int, len(points))
	for i, p := range points {
		details[i] = dashboard.NewDetail(p)
		if details[i].ParseErr != nil {
			c.logger.Warn("Failed to decode eval set context", zap.String("id", p.ID()), zap.Error(details[i].ParseErr))
		}
		idx[i] = i
	}

	fetched, err := fanOut(ctx, c, "actions_history", idx, func(ctx context.Context, i int) (indexedActions, error) {
		page, err := c.backend.ListActionsHistory(ctx, types.ActionsCriteria{EventIDs: []string{points[i].ID()}})
		if err != nil {
			return indexedActions{}, err
		}
		actions := page.Items
		if actions == nil {
			actions = []types.Action{}
		}
		return indexedActions{index: i, actions: actions}, nil
	})
	if err != nil {
		return nil, err
	}
	for _, f := range fetched {
		details[f.index].SetActions(f.actions)
	}
	return details, nil
}
