package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hearth-hq/beacon/pkg/config"
	"hearth-hq/beacon/pkg/gate"
	"hearth-hq/beacon/pkg/gate/budget"
	"hearth-hq/beacon/pkg/gate/budget/store"
	"hearth-hq/beacon/pkg/gate/cache"
	"hearth-hq/beacon/pkg/gate/ratelimit"
	"hearth-hq/beacon/pkg/processing/costs"
	"hearth-hq/beacon/pkg/processing/tokens"
	"hearth-hq/beacon/pkg/provider"
	"hearth-hq/beacon/pkg/server"
	"hearth-hq/beacon/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the beacon service",
	Long: `Start the beacon service with the specified configuration.

Examples:
  # Start with the default config file
  beacon run

  # Start with a custom config file
  beacon run --config /etc/beacon/beacon.yaml

  # Override the listen address
  beacon run --listen 0.0.0.0:8080

  # Reload rate limits, budgets, and pricing when the config file changes
  beacon run --watch`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload tunable config values on file change")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose && cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	fmt.Printf("Beacon v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Usage record backend: SQLite when a path is configured, otherwise
	// in-memory.
	var backend store.Backend
	if cfg.Gate.UsageDB != "" {
		sqliteBackend, err := store.NewSQLiteBackend(cfg.Gate.UsageDB)
		if err != nil {
			return fmt.Errorf("failed to open usage database: %w", err)
		}
		backend = sqliteBackend
		logger.Info("usage records persisted to sqlite", "path", cfg.Gate.UsageDB)
	} else {
		backend = store.NewMemoryBackend(0)
		logger.Info("usage records kept in memory")
	}
	defer backend.Close()

	calc := costs.NewCalculator(cfg.Gate.Pricing.CostPer1KTokens)
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: cfg.Gate.RateLimits.RequestsPerMinute,
		RequestsPerHour:   cfg.Gate.RateLimits.RequestsPerHour,
		RequestsPerDay:    cfg.Gate.RateLimits.RequestsPerDay,
	})
	tracker := budget.NewTracker(budget.Config{
		DailyLimit:       cfg.Gate.Budget.DailyLimit,
		MonthlyLimit:     cfg.Gate.Budget.MonthlyLimit,
		TenantDailyLimit: cfg.Gate.Budget.TenantDailyLimit,
	}, calc, backend)
	responseCache := cache.New(cache.Config{
		Capacity: cfg.Gate.Cache.Capacity,
		TTL:      cfg.Gate.Cache.TTL,
	})

	client := provider.NewHTTPClient(cfg.Provider)
	defer client.Close()

	var metrics *gate.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = gate.NewMetrics()
	}

	pipeline := gate.NewPipeline(gate.Options{
		Limiter:   limiter,
		Cache:     responseCache,
		Budget:    tracker,
		Estimator: tokens.NewEstimator(cfg.Gate.Tokens.CharsPerToken),
		Costs:     calc,
		Client:    client,
		Metrics:   metrics,
		Logger:    logger,
	})
	pipeline.SetEnabled(cfg.Gate.IsEnabled())
	fmt.Println("✓ Gate pipeline initialized")

	janitor := gate.NewJanitor(pipeline, cfg.Gate.SweepInterval, logger)
	if err := janitor.Start(); err != nil {
		return err
	}
	defer janitor.Stop()

	// Hot reload of tunables. Structural settings (listen address, cache
	// capacity, provider endpoint) still need a restart.
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
		defer watcher.Stop()

		watcher.Start(func(next *config.Config) {
			limiter.SetConfig(ratelimit.Config{
				RequestsPerMinute: next.Gate.RateLimits.RequestsPerMinute,
				RequestsPerHour:   next.Gate.RateLimits.RequestsPerHour,
				RequestsPerDay:    next.Gate.RateLimits.RequestsPerDay,
			})
			tracker.SetConfig(budget.Config{
				DailyLimit:       next.Gate.Budget.DailyLimit,
				MonthlyLimit:     next.Gate.Budget.MonthlyLimit,
				TenantDailyLimit: next.Gate.Budget.TenantDailyLimit,
			})
			calc.SetRate(next.Gate.Pricing.CostPer1KTokens)
			pipeline.SetEnabled(next.Gate.IsEnabled())
			logger.Info("tunable configuration applied",
				"assist_enabled", next.Gate.IsEnabled(),
				"cost_per_1k_tokens", next.Gate.Pricing.CostPer1KTokens,
			)
		})
	}

	srv := server.New(server.Options{
		Config:         cfg.Server,
		Pipeline:       pipeline,
		Logger:         logger,
		MetricsEnabled: cfg.Telemetry.MetricsEnabled,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.MetricsEnabled {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return err
		}
		fmt.Println("✓ Server stopped")
		return nil
	}
}
