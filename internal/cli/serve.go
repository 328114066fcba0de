package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/analytics"
	"github.com/hawkular/hawkular-alerts-console/internal/config"
	"github.com/hawkular/hawkular-alerts-console/internal/handler/tools"
	mcpserver "github.com/hawkular/hawkular-alerts-console/internal/mcp-server"
	"github.com/hawkular/hawkular-alerts-console/internal/webui"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server, plus the web console in http mode",
		Long: `Serve the console operations as MCP tools.

With --transport stdio (the default) the server talks MCP over stdin and
stdout. With --transport http it listens on --port and serves:

  /mcp      streamable HTTP MCP endpoint
  /         web console
  /metrics  Prometheus metrics
  /healthz  liveness
  /readyz   backend reachability`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cleanup, err := a.newMCPServer()
			if err != nil {
				return err
			}
			defer cleanup()
			return m.Start(cmd.Context())
		},
	}
}

// newMCPServer wires the tools handler, analytics and, in http mode, the
// web console. cleanup releases them once the server returned.
func (a *app) newMCPServer() (*mcpserver.MCPServer, func(), error) {
	tracker, err := analytics.New(a.logger, a.cfg.SegmentKey, "")
	if err != nil {
		return nil, nil, err
	}
	handler, err := tools.NewHandler(a.logger, a.console, a.cfg.Tenant,
		tools.WithMetrics(a.metrics),
		tools.WithTracker(tracker))
	if err != nil {
		_ = tracker.Close()
		return nil, nil, err
	}

	opts := []mcpserver.Option{mcpserver.WithGatherer(a.registry)}
	var web *webui.Server
	if a.cfg.TransportMode == config.ModeHTTP {
		web, err = webui.New(a.logger, a.console, a.cfg.Tenant, webui.WithRefreshInterval(a.cfg.RefreshInterval))
		if err != nil {
			handler.Close()
			_ = tracker.Close()
			return nil, nil, err
		}
		opts = append(opts, mcpserver.WithWebConsole(web))
	}

	cleanup := func() {
		if web != nil {
			web.Close()
		}
		handler.Close()
		if err := tracker.Close(); err != nil {
			a.logger.Warn("Failed to flush analytics", zap.Error(err))
		}
	}
	return mcpserver.NewMCPServer(a.logger, handler, a.console, a.cfg, opts...), cleanup, nil
}
