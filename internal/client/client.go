package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	promconfig "github.com/prometheus/common/config"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/internal/telemetry"
	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

const (
	DefaultURL = "http://127.0.0.1:8080/hawkular/alerts"

	ContentType      = "Content-Type"
	Accept           = "Accept"
	RequestIDHeader  = "X-Request-ID"
	TotalCountHeader = "X-Total-Count"

	jsonContentType = "application/json"

	DefaultRateLimit = 20
	DefaultBurst     = 40
	DefaultTimeout   = 30 * time.Second
)

// Alerts is the REST client of the Hawkular Alerting API.
type Alerts struct {
	baseURL string
	tenant  string
	logger  *zap.Logger
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *telemetry.Metrics
}

type options struct {
	httpConfig *promconfig.HTTPClientConfig
	httpClient *http.Client
	rateLimit  float64
	burst      int
	timeout    time.Duration
	metrics    *telemetry.Metrics
}

// Option configures an Alerts client.
type Option func(*options)

// WithHTTPConfig sets auth and TLS settings of the backend connection.
func WithHTTPConfig(cfg *promconfig.HTTPClientConfig) Option {
	return func(o *options) { o.httpConfig = cfg }
}

// WithHTTPClient replaces the http.Client entirely. HTTP config is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRateLimit caps requests per second. A limit <= 0 disables limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(o *options) { o.rateLimit, o.burst = limit, burst }
}

// WithTimeout bounds every single request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewClient creates a client for baseURL. tenant is the default tenant used
// when the request context carries none.
func NewClient(log *zap.Logger, baseURL, tenant string, opts ...Option) (*Alerts, error) {
	o := options{rateLimit: DefaultRateLimit, burst: DefaultBurst, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		cfg := promconfig.DefaultHTTPClientConfig
		if o.httpConfig != nil {
			cfg = *o.httpConfig
		}
		c, err := promconfig.NewClientFromConfig(cfg, "hawkular_alerts")
		if err != nil {
			return nil, fmt.Errorf("failed to create http client: %w", err)
		}
		c.Transport = otelhttp.NewTransport(c.Transport)
		httpClient = c
	}

	limit := rate.Inf
	if o.rateLimit > 0 {
		limit = rate.Limit(o.rateLimit)
	}

	a := &Alerts{
		baseURL: strings.TrimRight(baseURL, "/"),
		tenant:  tenant,
		logger:  log,
		http:    httpClient,
		timeout: o.timeout,
		limiter: rate.NewLimiter(limit, o.burst),
		metrics: o.metrics,
	}
	a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "hawkular-alerts",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrNotResponding)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Backend circuit changed state",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return a, nil
}

// BaseURL returns the backend url requests are sent to.
func (a *Alerts) BaseURL() string {
	return a.baseURL
}

// Tenant returns the default tenant.
func (a *Alerts) Tenant() string {
	return a.tenant
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// anonymous requests are sent without a tenant
	anonymous bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (a *Alerts) tenantFor(ctx context.Context) string {
	if t, ok := contextutil.Tenant(ctx); ok {
		return t
	}
	return a.tenant
}

// do sends r and decodes a 2xx JSON body into out when out is non nil.
func (a *Alerts) do(ctx context.Context, r request, out any) (http.Header, error) {
	tenant := a.tenantFor(ctx)
	if tenant == "" && !r.anonymous {
		return nil, ErrNoTenant
	}

	u := a.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	parent := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(Accept, jsonContentType)
	req.Header.Set(ContentType, jsonContentType)
	if tenant != "" {
		req.Header.Set(contextutil.TenantHeader, tenant)
	}
	requestID, ok := contextutil.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	a.logger.Debug("Making request to Hawkular Alerting",
		zap.String("method", r.method),
		zap.String("endpoint", r.path),
		zap.String("tenant", tenant),
		zap.String("request_id", requestID))

	start := time.Now()
	res, err := a.breaker.Execute(func() (interface{}, error) {
		resp, err := a.http.Do(req)
		if err != nil {
			if parent.Err() != nil {
				return nil, fmt.Errorf("failed to do request: %w", parent.Err())
			}
			return nil, fmt.Errorf("failed to do request: %w: %w", ErrNotResponding, err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				a.logger.Warn("Failed to close response body", zap.Error(err))
			}
		}()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return &response{status: resp.StatusCode, header: resp.Header, body: b}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %w", ErrNotResponding, err)
		}
		a.metrics.ObserveRequest(r.method, routeOf(r.path), 0, time.Since(start))
		a.logger.Error("HTTP request failed", zap.String("url", u), zap.Error(err))
		return nil, err
	}
	resp := res.(*response)
	a.metrics.ObserveRequest(r.method, routeOf(r.path), resp.status, time.Since(start))

	if resp.status < 200 || resp.status >= 300 {
		a.logger.Error("API request failed",
			zap.String("url", u),
			zap.Int("status", resp.status),
			zap.String("response", string(resp.body)))
		return nil, newAPIError(resp.status, resp.body)
	}

	if out != nil && len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			a.logger.Error("Failed to decode response", zap.String("url", u), zap.Error(err))
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	a.logger.Debug("Request succeeded", zap.String("url", u), zap.Int("status", resp.status))
	return resp.header, nil
}

// totalCount reads X-Total-Count, falling back to n.
func totalCount(h http.Header, n int) int {
	if v := h.Get(TotalCountHeader); v != "" {
		if total, err := strconv.Atoi(v); err == nil {
			return total
		}
	}
	return n
}

func list[T any](ctx context.Context, a *Alerts, path string, query url.Values) (types.Page[T], error) {
	var items []T
	h, err := a.do(ctx, request{method: http.MethodGet, path: path, query: query}, &items)
	if err != nil {
		return types.Page[T]{}, err
	}
	return types.Page[T]{Items: items, Total: totalCount(h, len(items))}, nil
}

// routeOf collapses ids out of a path so metric labels stay bounded.
func routeOf(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "/"
	}
	switch parts[0] {
	case "triggers", "actions", "events", "plugins", "import":
		if len(parts) > 1 {
			switch parts[1] {
			case "trigger", "enabled", "plugin", "history", "event", "delete":
				return "/" + parts[0] + "/" + parts[1]
			}
			return "/" + parts[0] + "/:id"
		}
	}
	return "/" + parts[0]
}

func escape(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
