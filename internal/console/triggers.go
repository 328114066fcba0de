package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/pkg/paginate"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// TriggerQuery selects the triggers view. Page is 1 based.
type TriggerQuery struct {
	Tags     string
	Page     int
	PageSize int
}

// TriggersView is the full trigger list plus the pager over it.
type TriggersView struct {
	Triggers []types.FullTrigger
	Pages    paginate.Pages
}

// Visible returns the triggers of the current page.
func (v *TriggersView) Visible() []types.FullTrigger {
	return v.Triggers[v.Pages.From:v.Pages.To]
}

// Triggers lists the trigger definitions and fetches each full trigger.
func (c *Console) Triggers(ctx context.Context, q TriggerQuery) (*TriggersView, error) {
	ctx, span := c.span(ctx, "console.Triggers")
	defer span.End()

	page, err := c.backend.ListTriggers(ctx, types.TriggersCriteria{Tags: q.Tags})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(page.Items))
	for _, t := range page.Items {
		ids = append(ids, t.ID)
	}
	full, err := fanOut(ctx, c, "triggers", ids, func(ctx context.Context, id string) (types.FullTrigger, error) {
		ft, err := c.backend.GetFullTrigger(ctx, id)
		if err != nil {
			return types.FullTrigger{}, err
		}
		return *ft, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Triggers updated", zap.Int("listed", len(ids)), zap.Int("fetched", len(full)))
	return &TriggersView{
		Triggers: full,
		Pages:    paginate.Paginate(len(full), q.PageSize, q.Page),
	}, nil
}

// Trigger fetches one full trigger.
func (c *Console) Trigger(ctx context.Context, triggerID string) (*types.FullTrigger, error) {
	return c.backend.GetFullTrigger(ctx, triggerID)
}

// CreateTrigger creates a full trigger from operator JSON and refetches.
func (c *Console) CreateTrigger(ctx context.Context, jsonText string, q TriggerQuery) (*TriggersView, error) {
	var ft types.FullTrigger
	if err := decodeJSON(jsonText, &ft); err != nil {
		return nil, err
	}
	if ft.Trigger == nil {
		return nil, fmt.Errorf("%w: a full trigger needs a \"trigger\" document", client.ErrInvalidInput)
	}
	if _, err := c.backend.CreateFullTrigger(ctx, &ft); err != nil {
		return nil, err
	}
	return c.Triggers(ctx, q)
}

// UpdateTrigger replaces triggerID with operator JSON and refetches.
func (c *Console) UpdateTrigger(ctx context.Context, triggerID, jsonText string, q TriggerQuery) (*TriggersView, error) {
	var ft types.FullTrigger
	if err := decodeJSON(jsonText, &ft); err != nil {
		return nil, err
	}
	if ft.Trigger == nil {
		return nil, fmt.Errorf("%w: a full trigger needs a \"trigger\" document", client.ErrInvalidInput)
	}
	if err := c.backend.UpdateFullTrigger(ctx, triggerID, &ft); err != nil {
		return nil, err
	}
	return c.Triggers(ctx, q)
}

// DeleteTrigger removes triggerID and refetches.
func (c *Console) DeleteTrigger(ctx context.Context, triggerID string, q TriggerQuery) (*TriggersView, error) {
	if err := c.backend.DeleteTrigger(ctx, triggerID); err != nil {
		return nil, err
	}
	return c.Triggers(ctx, q)
}

// SetTriggerEnabled enables or disables triggerID and refetches.
func (c *Console) SetTriggerEnabled(ctx context.Context, triggerID string, enabled bool, q TriggerQuery) (*TriggersView, error) {
	if err := c.backend.SetTriggersEnabled(ctx, []string{triggerID}, enabled); err != nil {
		return nil, err
	}
	return c.Triggers(ctx, q)
}
