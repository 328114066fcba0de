// Package cli is the hwkconsole command line: one cobra command per console
// operation plus serve, which runs the MCP server and the web console.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/config"
	"github.com/hawkular/hawkular-alerts-console/internal/console"
	"github.com/hawkular/hawkular-alerts-console/internal/logger"
	mcpserver "github.com/hawkular/hawkular-alerts-console/internal/mcp-server"
	"github.com/hawkular/hawkular-alerts-console/internal/telemetry"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"

	serviceName = "hwkconsole"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	output string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	client   *client.Alerts
	console  *console.Console
	shutdown telemetry.ShutdownFunc

	// set by tests to swap the console clock
	consoleOpts []console.Option
}

// NewRootCommand builds the command tree writing results to out and errors
// to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: config.NewViper(), out: out, errOut: errOut}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hwkconsole",
		Short: "Operator console for Hawkular Alerting",
		Long: `hwkconsole manages triggers, actions, alerts and events of a Hawkular
Alerting server, shows the alerts dashboard and serves the same operations as
MCP tools and as a web console.

Every flag can also be set through its environment variable, e.g.
HAWKULAR_URL, HAWKULAR_TENANT or LOG_LEVEL.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd.Context()) },
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	// RegisterFlags only fails on a programming error in the flag table
	if err := config.RegisterFlags(a.v, root.PersistentFlags()); err != nil {
		panic(err)
	}
	root.PersistentFlags().StringVarP(&a.output, "output", "o", OutputTable, "output format: table, json or yaml")

	root.AddCommand(
		a.statusCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.triggersCommand(),
		a.actionsCommand(),
		a.alertsCommand(),
		a.eventsCommand(),
		a.dashboardCommand(),
		a.serveCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger, metrics, telemetry,
// client and console shared by all subcommands.
func (a *app) setup(ctx context.Context) error {
	switch a.output = strings.ToLower(a.output); a.output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output %q: use %s, %s or %s", a.output, OutputTable, OutputJSON, OutputYAML)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	log, err := logger.NewLogger(logger.LogLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = log

	a.shutdown, err = telemetry.Setup(ctx, log, cfg.OTLPEndpoint, serviceName, mcpserver.Version)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = telemetry.NewMetrics(a.registry)

	opts := []client.Option{
		client.WithRateLimit(cfg.RateLimit, max(int(2*cfg.RateLimit), 1)),
		client.WithMetrics(a.metrics),
	}
	if cfg.HTTPConfig != nil {
		opts = append(opts, client.WithHTTPConfig(cfg.HTTPConfig))
	}
	a.client, err = client.NewClient(log, cfg.URL, cfg.Tenant, opts...)
	if err != nil {
		return err
	}

	consoleOpts := append([]console.Option{
		console.WithFanoutLimit(cfg.FanoutLimit),
		console.WithMetrics(a.metrics),
	}, a.consoleOpts...)
	a.console = console.New(log, a.client, consoleOpts...)

	log.Debug("Configuration loaded",
		zap.String("url", cfg.URL),
		zap.String("tenant", cfg.Tenant),
		zap.String("transport", cfg.TransportMode))
	return nil
}

// close flushes telemetry and the logger. Safe to call when setup failed
// half way.
func (a *app) close() {
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil && a.logger != nil {
			a.logger.Warn("Failed to shut down telemetry", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no backend or config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "%s %s\n", serviceName, mcpserver.Version)
		},
	}
}

// Execute runs the command line and returns the process exit code. Errors
// are rendered the way the console shows them to operators.
func Execute(ctx context.Context, args []string) int {
	a := &app{v: config.NewViper(), out: os.Stdout, errOut: os.Stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	defer a.close()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(a.errOut, "Error:", client.Describe(err))
		return 1
	}
	return 0
}
