package mcp_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/config"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/internal/handler/tools"
)

const (
	ServerName = "HawkularAlertsConsole"

	readyTimeout    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Version is set at build time.
var Version = "0.0.1"

type MCPServer struct {
	logger   *zap.Logger
	handler  *tools.Handler
	config   *config.Config
	console  *console.Console
	web      http.Handler
	gatherer prometheus.Gatherer
}

// Option configures an MCPServer.
type Option func(*MCPServer)

// WithWebConsole mounts the web console on / in HTTP mode.
func WithWebConsole(h http.Handler) Option {
	return func(m *MCPServer) { m.web = h }
}

// WithGatherer serves the metrics of g on /metrics in HTTP mode.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(m *MCPServer) { m.gatherer = g }
}

func NewMCPServer(log *zap.Logger, handler *tools.Handler, c *console.Console, cfg *config.Config, opts ...Option) *MCPServer {
	m := &MCPServer{logger: log, handler: handler, console: c, config: cfg}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewServer creates the MCP server with every tool registered.
func (m *MCPServer) NewServer() *server.MCPServer {
	s := server.NewMCPServer(ServerName, Version, server.WithLogging(), server.WithToolCapabilities(false))
	m.handler.Register(s)
	m.logger.Info("All handlers registered successfully")
	return s
}

// Start serves until ctx is cancelled or the transport fails.
func (m *MCPServer) Start(ctx context.Context) error {
	s := m.NewServer()

	m.logger.Info("Starting Hawkular Alerts MCP Server",
		zap.String("server_name", ServerName),
		zap.String("transport", m.config.TransportMode))

	if m.config.TransportMode == config.ModeHTTP {
		return m.startHTTP(ctx, s)
	}
	return m.startStdio(s)
}

func (m *MCPServer) startStdio(s *server.MCPServer) error {
	m.logger.Info("MCP Server running in stdio mode")
	return server.ServeStdio(s)
}

// Handler returns the HTTP mode routes: /mcp, /healthz, /readyz, /metrics
// and the web console on every other path.
func (m *MCPServer) Handler(s *server.MCPServer) http.Handler {
	mux := http.NewServeMux()

	httpServer := server.NewStreamableHTTPServer(s, server.WithHTTPContextFunc(requestContext))
	mux.Handle("/mcp", httpServer)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", m.ready)

	if m.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	}
	if m.web != nil {
		mux.Handle("/", m.web)
	}
	return otelhttp.NewHandler(mux, ServerName)
}

// ready checks the backend answers its status endpoint.
func (m *MCPServer) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if _, err := m.console.Status(ctx); err != nil {
		m.logger.Warn("Backend not ready", zap.Error(err))
		http.Error(w, client.Describe(err), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (m *MCPServer) startHTTP(ctx context.Context, s *server.MCPServer) error {
	addr := fmt.Sprintf(":%s", m.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.logger.Info("Listening for MCP clients",
		zap.String("addr", addr),
		zap.String("mcp_endpoint", "/mcp"),
		zap.Bool("web_console", m.web != nil))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		m.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}

// requestContext carries the tenant and request id of an MCP HTTP request
// into tool calls. The tenant comes from the Hawkular-Tenant header or the
// tenant query parameter.
func requestContext(ctx context.Context, r *http.Request) context.Context {
	tenant := strings.TrimSpace(r.Header.Get(contextutil.TenantHeader))
	if tenant == "" {
		tenant = strings.TrimSpace(r.URL.Query().Get("tenant"))
	}
	if tenant != "" {
		ctx = contextutil.WithTenant(ctx, tenant)
	}
	if id := r.Header.Get(client.RequestIDHeader); id != "" {
		ctx = contextutil.WithRequestID(ctx, id)
	}
	return ctx
}
