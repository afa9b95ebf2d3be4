package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rhxd/rhxd/internal/cli/timeutil"
	"github.com/rhxd/rhxd/internal/hotline/handlers"
	"github.com/rhxd/rhxd/internal/hotline/server"
	"github.com/rhxd/rhxd/internal/hotline/tracker"
	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/internal/logger"
	"github.com/rhxd/rhxd/internal/telemetry"
	"github.com/rhxd/rhxd/pkg/accounts"
	"github.com/rhxd/rhxd/pkg/accounts/memory"
	"github.com/rhxd/rhxd/pkg/accounts/sqlite"
	"github.com/rhxd/rhxd/pkg/config"
	promMetrics "github.com/rhxd/rhxd/pkg/metrics/prometheus"
)

// protocolVersion is the numeric Hotline protocol version announced in
// field 160 of a successful Login reply. It is fixed by the wire
// protocol, not configurable.
const protocolVersion uint16 = 197

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the rhxd server",
	Long: `Start the rhxd server with the configuration at --config, or the
default location if omitted.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "rhxd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	accountStore, err := openAccountStore(cfg.Accounts)
	if err != nil {
		return fmt.Errorf("open account store: %w", err)
	}

	registry := prometheus.NewRegistry()
	var hmetrics = promMetrics.NewHotlineMetrics(registry)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	adapter := server.New(server.Config{
		ListenAddr:      cfg.ListenAddr,
		ListenPort:      cfg.ListenPort,
		MaxConnections:  cfg.MaxConnections,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Handlers: handlers.Config{
			ServerName:         cfg.ServerName,
			ServerVersion:      protocolVersion,
			AllowGuest:         cfg.AllowGuest,
			DefaultUserAccess:  wire.AccessPrivileges(cfg.DefaultUserAccess),
			DefaultGuestAccess: wire.AccessPrivileges(cfg.DefaultGuestAccess),
		},
	}, accountStore, hmetrics)

	registrar := tracker.NewRegistrar(tracker.Config{
		Address:     cfg.Tracker.Address,
		Interval:    cfg.Tracker.Interval,
		Name:        cfg.ServerName,
		Description: cfg.Tracker.Description,
		ListenPort:  cfg.ListenPort,
	}, adapter.Registry())
	go func() {
		if err := registrar.Run(ctx); err != nil {
			logger.Warn("tracker registration stopped", "error", err)
		}
	}()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- adapter.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	startedAt := time.Now()
	logger.Info("rhxd listening", "addr", cfg.ListenAddr, "port", cfg.ListenPort)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serverDone; err != nil {
			stopMetricsServer(metricsServer)
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			stopMetricsServer(metricsServer)
			return err
		}
	}

	stopMetricsServer(metricsServer)
	logger.Info("rhxd stopped", "uptime", timeutil.FormatUptime(time.Since(startedAt).String()))
	return nil
}

func stopMetricsServer(srv *http.Server) {
	if srv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown error", "error", err)
	}
}

func openAccountStore(cfg config.AccountsConfig) (accounts.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	default:
		return memory.New(), nil
	}
}
