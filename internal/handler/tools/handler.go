package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/analytics"
	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/internal/search"
	"github.com/hawkular/hawkular-alerts-console/internal/telemetry"
	"github.com/hawkular/hawkular-alerts-console/pkg/paginate"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

const (
	tenantDesc    = "Tenant to act on, sent as the Hawkular-Tenant header (optional, defaults to the configured tenant or the tenant of the HTTP session)."
	rangeDesc     = "Time window ending now (optional, defaults to '4h'). Presets: '30m', '1h', '4h', '8h', '12h', '1d', '7d', '30d'. Any duration like '45m' or '3d' also works."
	datetimeDesc  = "Anchor of the time window (optional, defaults to now). Supports 'now', epoch milliseconds, RFC3339 (e.g., '2006-01-02T15:04:05Z') or '2006-01-02 15:04:05'."
	directionDesc = "Whether the window lies 'Before' (default) or 'After' the anchor datetime."
	limitDesc     = "Maximum number of items to return per page. Default: 50. Must be greater than 0."
	offsetDesc    = "Number of items to skip. Use 'pagination.nextOffset' from the previous response to get the next page. Default: 0."
	userDesc      = "Operator name recorded on the alert lifecycle."
	notesDesc     = "Operator notes recorded with the change."

	DefaultIndexCacheSize = 16
)

// Handler exposes the console views as MCP tools.
type Handler struct {
	console       *console.Console
	logger        *zap.Logger
	defaultTenant string

	// search indexes per tenant, built by the first search and reused
	// until a search asks for a refresh
	indexes    *lru.Cache[string, *search.Index]
	indexMutex sync.Mutex

	metrics *telemetry.Metrics
	tracker *analytics.Tracker
	calls   metric.Int64Counter
}

type handlerOptions struct {
	metrics        *telemetry.Metrics
	tracker        *analytics.Tracker
	indexCacheSize int
}

// Option configures a Handler.
type Option func(*handlerOptions)

// WithMetrics counts tool calls on the Prometheus registry of m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *handlerOptions) { o.metrics = m }
}

// WithTracker reports tool calls to usage analytics.
func WithTracker(t *analytics.Tracker) Option {
	return func(o *handlerOptions) { o.tracker = t }
}

// WithIndexCacheSize bounds the number of tenants with a search index.
func WithIndexCacheSize(n int) Option {
	return func(o *handlerOptions) { o.indexCacheSize = n }
}

func NewHandler(log *zap.Logger, c *console.Console, defaultTenant string, opts ...Option) (*Handler, error) {
	o := handlerOptions{indexCacheSize: DefaultIndexCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	indexes, err := lru.NewWithEvict(o.indexCacheSize, func(tenant string, idx *search.Index) {
		if err := idx.Close(); err != nil {
			log.Warn("Failed to close evicted search index", zap.String("tenant", tenant), zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index cache: %w", err)
	}
	calls, err := otel.Meter("github.com/hawkular/hawkular-alerts-console/internal/handler/tools").
		Int64Counter("hwkconsole.tool.calls", metric.WithDescription("MCP tool calls by tool and outcome."))
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call counter: %w", err)
	}
	return &Handler{
		console:       c,
		logger:        log,
		defaultTenant: defaultTenant,
		indexes:       indexes,
		metrics:       o.metrics,
		tracker:       o.tracker,
		calls:         calls,
	}, nil
}

// Register adds every tool to s.
func (h *Handler) Register(s *server.MCPServer) {
	h.RegisterStatusHandlers(s)
	h.RegisterTriggersHandlers(s)
	h.RegisterActionsHandlers(s)
	h.RegisterAlertsHandlers(s)
	h.RegisterEventsHandlers(s)
	h.RegisterDashboardHandlers(s)
}

// Close releases the search indexes.
func (h *Handler) Close() {
	h.indexMutex.Lock()
	defer h.indexMutex.Unlock()
	h.indexes.Purge()
}

// tenant returns the tenant a call acts on: the one in the context, else the
// configured default.
func (h *Handler) tenant(ctx context.Context) string {
	if t, ok := contextutil.Tenant(ctx); ok {
		return t
	}
	return h.defaultTenant
}

// toolFunc runs a tool. The result is sent as text when it is a string and
// as JSON otherwise.
type toolFunc func(ctx context.Context, args map[string]any) (any, error)

// add registers tool with instrumentation and error rendering around fn.
func (h *Handler) add(s *server.MCPServer, tool mcp.Tool, fn toolFunc) {
	name := tool.Name
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := req.Params.Arguments.(map[string]any)
		if !ok || args == nil {
			args = map[string]any{}
		}
		if t := stringArg(args, "tenant"); t != "" {
			ctx = contextutil.WithTenant(ctx, t)
		}
		tenant := h.tenant(ctx)
		h.logger.Debug("Tool called: "+name, zap.String("tenant", tenant))

		start := time.Now()
		out, err := fn(ctx, args)
		h.record(ctx, name, tenant, err != nil, time.Since(start))
		if err != nil {
			h.logger.Error("Tool failed", zap.String("tool", name), zap.String("tenant", tenant), zap.Error(err))
			return mcp.NewToolResultError(client.Describe(err)), nil
		}

		switch v := out.(type) {
		case string:
			return mcp.NewToolResultText(v), nil
		case []byte:
			return mcp.NewToolResultText(string(v)), nil
		}
		b, err := json.Marshal(out)
		if err != nil {
			h.logger.Error("Failed to marshal tool result", zap.String("tool", name), zap.Error(err))
			return mcp.NewToolResultError("failed to marshal response: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	})
}

func (h *Handler) record(ctx context.Context, tool, tenant string, failed bool, d time.Duration) {
	h.metrics.ToolCall(tool, failed)
	h.tracker.ToolCalled(tool, tenant, failed, d)
	h.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("failed", failed)))
}

// paged slices items with the limit and offset arguments and wraps them
// with pagination metadata.
func paged[T any](args map[string]any, items []T) ([]byte, error) {
	limit, offset := paginate.ParseParams(args)
	all := make([]any, len(items))
	for i := range items {
		all[i] = items[i]
	}
	b, err := paginate.Wrap(paginate.Array(all, offset, limit), len(all), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return b, nil
}

func withTenant() mcp.ToolOption {
	return mcp.WithString("tenant", mcp.Description(tenantDesc))
}

func withPaging() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("limit", mcp.Description(limitDesc)),
		mcp.WithString("offset", mcp.Description(offsetDesc)),
	}
}

func withRange() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("range", mcp.Description(rangeDesc)),
		mcp.WithString("datetime", mcp.Description(datetimeDesc)),
		mcp.WithString("direction", mcp.Description(directionDesc), mcp.Enum("Before", "After")),
	}
}

func newTool(name, description string, groups ...[]mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(description), withTenant()}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return mcp.NewTool(name, opts...)
}

func (h *Handler) RegisterStatusHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering status handlers")

	h.add(s, newTool("hawkular_status",
		"Get the Hawkular Alerting status document (version, status, distributed mode). Use it to check the backend is reachable."),
		func(ctx context.Context, _ map[string]any) (any, error) {
			return h.console.Status(ctx)
		})

	h.add(s, newTool("hawkular_export",
		"Export every trigger and action definition of the tenant as one JSON document, suitable for hawkular_import."),
		func(ctx context.Context, _ map[string]any) (any, error) {
			return h.console.Export(ctx)
		})

	h.add(s, newTool("hawkular_import",
		"Import trigger and action definitions previously exported with hawkular_export.",
		[]mcp.ToolOption{
			mcp.WithString("strategy", mcp.Required(), mcp.Enum("DELETE", "ALL", "NEW", "OLD"),
				mcp.Description("DELETE removes existing definitions first, ALL overwrites, NEW only adds missing ones, OLD only updates existing ones.")),
			mcp.WithString("definitions", mcp.Required(), mcp.Description(`Definitions JSON: {"triggers": [...], "actions": {...}}`)),
		}),
		func(ctx context.Context, args map[string]any) (any, error) {
			strategy, err := requiredArg(args, "strategy", `{"strategy": "ALL"}`)
			if err != nil {
				return nil, err
			}
			st := types.ImportStrategy(strategy)
			if !st.Valid() {
				return nil, fmt.Errorf("%w: unknown import strategy %q: use DELETE, ALL, NEW or OLD", client.ErrInvalidInput, strategy)
			}
			return h.console.Import(ctx, st, stringArg(args, "definitions"))
		})
}
