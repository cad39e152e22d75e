package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/covscope/covscope/internal/config"
	"github.com/covscope/covscope/internal/mcp"
	"github.com/covscope/covscope/pkg/observability"
	"github.com/covscope/covscope/pkg/version"
)

// mcpMeterName is the meter name for instruments exposed over Prometheus.
const mcpMeterName = "covscope"

// Timeouts for the optional Prometheus metrics endpoint.
const (
	metricsReadTimeout  = 30 * time.Second
	metricsWriteTimeout = 60 * time.Second
	metricsIdleTimeout  = 120 * time.Second
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes coverage query capabilities as tools that AI
agents can discover and invoke:
  - coverage_summary: Bundle totals and per-package coverage
  - file_coverage: Per-file counters and uncovered lines
  - diff_methods: Method-level change descriptors from a diff payload`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			fileCfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			return runMCP(cobraCmd, fileCfg, debug, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", `serve Prometheus metrics on this address (e.g. ":9090")`)

	return cmd
}

func runMCP(cobraCmd *cobra.Command, fileCfg *config.Config, debug bool, metricsAddr string) error {
	providers, err := initMCPObservability(fileCfg, debug)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	if metricsAddr == "" {
		metricsAddr = fileCfg.Observability.MetricsAddr
	}

	red, stopMetrics, err := buildMCPMetrics(providers, metricsAddr)
	if err != nil {
		return err
	}

	defer stopMetrics()

	deps := mcp.ServerDeps{Logger: providers.Logger, Metrics: red, Tracer: providers.Tracer}

	srv := mcp.NewServer(deps)

	return srv.Run(cobraCmd.Context())
}

func initMCPObservability(fileCfg *config.Config, debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true
	cfg.LogLevel = parseLogLevel(fileCfg.Observability.LogLevel)
	cfg.SampleRatio = fileCfg.Observability.SampleRatio
	cfg.OTLPEndpoint = fileCfg.Observability.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(fileCfg.Observability.OTLPHeaders)
	cfg.OTLPInsecure = fileCfg.Observability.OTLPInsecure

	// Standard OTel environment variables take precedence over the file.
	if env := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); env != "" {
		cfg.OTLPEndpoint = env
	}

	if env := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); env != "" {
		cfg.OTLPHeaders = observability.ParseOTLPHeaders(env)
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		cfg.OTLPInsecure = true
	}

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return observability.Init(cfg)
}

// buildMCPMetrics creates the RED metrics for tool handlers. With a
// metrics address the instruments come from a Prometheus-backed
// provider and a scrape endpoint is served; without one they feed the
// OTLP pipeline (a no-op when unconfigured).
func buildMCPMetrics(providers observability.Providers, addr string) (*observability.REDMetrics, func(), error) {
	if addr == "" {
		red, err := observability.NewREDMetrics(providers.Meter)
		if err != nil {
			return nil, nil, err
		}

		return red, func() {}, nil
	}

	handler, promProvider, err := observability.PrometheusHandler()
	if err != nil {
		return nil, nil, err
	}

	red, err := observability.NewREDMetrics(promProvider.Meter(mcpMeterName))
	if err != nil {
		return nil, nil, err
	}

	stop := serveMetrics(addr, observability.HTTPMiddleware(providers.Tracer, red, handler), providers.Logger)

	return red, stop, nil
}

func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: metricsWriteTimeout,
		IdleTimeout:  metricsIdleTimeout,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint failed", "addr", addr, "error", err)
		}
	}()

	logger.Info("metrics endpoint started", "addr", addr)

	return func() { _ = server.Close() }
}

func parseLogLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
