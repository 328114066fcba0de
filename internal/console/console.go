// Package console holds the view-models shared by every operator surface.
// Each view fetches its list, fans out detail requests and returns a
// snapshot; mutations are always followed by a refetch so a view never
// shows state the backend did not confirm.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/telemetry"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

// DefaultFanoutLimit bounds concurrent detail requests of one view.
const DefaultFanoutLimit = 8

var tracer = otel.Tracer("github.com/hawkular/hawkular-alerts-console/internal/console")

// Backend is the Hawkular Alerting API as used by the console.
type Backend interface {
	ListTriggers(ctx context.Context, c types.TriggersCriteria) (types.Page[types.Trigger], error)
	GetFullTrigger(ctx context.Context, triggerID string) (*types.FullTrigger, error)
	CreateFullTrigger(ctx context.Context, ft *types.FullTrigger) (*types.FullTrigger, error)
	UpdateFullTrigger(ctx context.Context, triggerID string, ft *types.FullTrigger) error
	DeleteTrigger(ctx context.Context, triggerID string) error
	SetTriggersEnabled(ctx context.Context, triggerIDs []string, enabled bool) error

	ListActionIDs(ctx context.Context) (types.ActionIDs, error)
	ListActionIDsByPlugin(ctx context.Context, plugin string) ([]string, error)
	GetActionDefinition(ctx context.Context, plugin, actionID string) (*types.ActionDefinition, error)
	CreateActionDefinition(ctx context.Context, def *types.ActionDefinition) (*types.ActionDefinition, error)
	UpdateActionDefinition(ctx context.Context, def *types.ActionDefinition) error
	DeleteActionDefinition(ctx context.Context, plugin, actionID string) error
	ListActionsHistory(ctx context.Context, c types.ActionsCriteria) (types.Page[types.Action], error)
	ListPlugins(ctx context.Context) ([]string, error)
	GetPlugin(ctx context.Context, plugin string) ([]string, error)

	QueryAlerts(ctx context.Context, c types.AlertsCriteria) (types.Page[types.Alert], error)
	GetAlert(ctx context.Context, alertID string, thin bool) (*types.Alert, error)
	AckAlerts(ctx context.Context, alertIDs []string, ackBy, ackNotes string) error
	ResolveAlerts(ctx context.Context, alertIDs []string, resolvedBy, resolvedNotes string) error
	NoteAlert(ctx context.Context, alertID, user, text string) error
	DeleteAlerts(ctx context.Context, c types.AlertsCriteria) (int, error)

	QueryEvents(ctx context.Context, c types.EventsCriteria) (types.Page[types.Event], error)
	GetEvent(ctx context.Context, eventID string, thin bool) (*types.Event, error)
	DeleteEvents(ctx context.Context, c types.EventsCriteria) (int, error)

	Status(ctx context.Context) (map[string]string, error)
	Export(ctx context.Context) (*types.Definitions, error)
	Import(ctx context.Context, strategy types.ImportStrategy, defs *types.Definitions) (*types.Definitions, error)
}

// Console is the view-model layer over a Backend.
type Console struct {
	backend Backend
	logger  *zap.Logger
	fanout  int
	metrics *telemetry.Metrics
	clock   clock.Clock
}

// Option configures a Console.
type Option func(*Console)

// WithFanoutLimit bounds concurrent detail requests.
func WithFanoutLimit(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.fanout = n
		}
	}
}

// WithMetrics records dropped fan-out items and dashboard refreshes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Console) { c.metrics = m }
}

// WithClock replaces the wall clock, used by tests.
func WithClock(clk clock.Clock) Option {
	return func(c *Console) { c.clock = clk }
}

// New creates a Console over backend.
func New(log *zap.Logger, backend Backend, opts ...Option) *Console {
	c := &Console{
		backend: backend,
		logger:  log,
		fanout:  DefaultFanoutLimit,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clock returns the clock ranges are anchored with.
func (c *Console) Clock() clock.Clock {
	return c.clock
}

// Status returns the backend status document.
func (c *Console) Status(ctx context.Context) (map[string]string, error) {
	return c.backend.Status(ctx)
}

// Export dumps the tenant definitions.
func (c *Console) Export(ctx context.Context) (*types.Definitions, error) {
	return c.backend.Export(ctx)
}

// Import parses definitions from operator JSON and loads them with strategy.
func (c *Console) Import(ctx context.Context, strategy types.ImportStrategy, jsonText string) (*types.Definitions, error) {
	var defs types.Definitions
	if err := decodeJSON(jsonText, &defs); err != nil {
		return nil, err
	}
	return c.backend.Import(ctx, strategy, &defs)
}

func (c *Console) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// decodeJSON rejects empty or malformed operator input before anything is sent.
func decodeJSON(text string, v any) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: JSON text is empty", client.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", client.ErrInvalidInput, err)
	}
	return nil
}

// PrettyJSON renders v the way view dialogs show a document.
func PrettyJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	return string(b), nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", client.ErrInvalidInput, field)
	}
	return nil
}
