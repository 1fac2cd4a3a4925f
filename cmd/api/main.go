package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/chamber-scheduler/cmd/mainconfig"
	"github.com/wolfman30/chamber-scheduler/internal/api/router"
	"github.com/wolfman30/chamber-scheduler/internal/app/bootstrap"
	"github.com/wolfman30/chamber-scheduler/internal/appointments"
	appconfig "github.com/wolfman30/chamber-scheduler/internal/config"
	"github.com/wolfman30/chamber-scheduler/internal/confirmation"
	"github.com/wolfman30/chamber-scheduler/internal/observability/metrics"
	"github.com/wolfman30/chamber-scheduler/internal/persistence"
	"github.com/wolfman30/chamber-scheduler/internal/schedule"
	"github.com/wolfman30/chamber-scheduler/internal/scheduling"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

func main() {
	// Load .env file when present
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chamber-scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"persistence", cfg.PersistenceBackend,
	)

	ctx := context.Background()
	handler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildHandler loads persisted state and wires the scheduling service behind
// the HTTP router.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	loadAWS := mainconfig.Loader(cfg)

	backend, closeBackend, err := bootstrap.BuildBackend(ctx, cfg, logger, loadAWS)
	if err != nil {
		return nil, nil, err
	}
	adapter := persistence.NewAdapter(backend, logger)

	initialSchedule, err := adapter.LoadSchedule(ctx)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}
	initialAppointments, err := adapter.LoadAppointments(ctx)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}

	generator, closeGenerator, err := bootstrap.BuildConfirmationGenerator(ctx, cfg, logger, loadAWS)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}

	metricsHandler, schedulingMetrics := setupSchedulingMetrics()
	provider := confirmation.NewProvider(generator, logger,
		confirmation.WithTimeout(cfg.ConfirmationTimeout),
		confirmation.WithObserver(schedulingMetrics),
	)

	service := scheduling.NewService(
		schedule.NewStore(initialSchedule),
		appointments.NewStore(initialAppointments, schedule.NewID),
		adapter,
		provider,
		schedulingMetrics,
		logger,
	)

	r := router.New(&router.Config{
		Logger:              logger,
		SchedulingHandler:   scheduling.NewHandler(service, logger),
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		WriteRateLimitRPS:   cfg.WriteRateLimitRPS,
		WriteRateLimitBurst: cfg.WriteRateLimitBurst,
	})

	cleanup := func() {
		closeGenerator()
		closeBackend()
	}
	return r, cleanup, nil
}

func setupSchedulingMetrics() (http.Handler, *metrics.SchedulingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSchedulingMetrics(reg)
}
