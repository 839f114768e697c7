package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/outboundhq/salesops-platform/internal/api/router"
	"github.com/outboundhq/salesops-platform/internal/app/bootstrap"
	"github.com/outboundhq/salesops-platform/internal/assignments"
	"github.com/outboundhq/salesops-platform/internal/clients"
	appconfig "github.com/outboundhq/salesops-platform/internal/config"
	"github.com/outboundhq/salesops-platform/internal/dashboard"
	"github.com/outboundhq/salesops-platform/internal/http/handlers"
	"github.com/outboundhq/salesops-platform/internal/meetings"
	"github.com/outboundhq/salesops-platform/internal/observability/metrics"
	"github.com/outboundhq/salesops-platform/internal/sdrs"
	"github.com/outboundhq/salesops-platform/internal/worker"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salesops-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	sqlDB, err := bootstrap.OpenSQL(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	pgxPool, err := bootstrap.OpenPGXPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open pgx pool", "error", err)
		os.Exit(1)
	}
	defer pgxPool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	dashCache := bootstrap.BuildDashboardCache(redisClient, cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dashMetrics := metrics.NewDashboardMetrics(registry)

	meetingRepo := meetings.NewRepository(sqlDB)
	clientRepo := clients.NewRepository(sqlDB)
	sdrRepo := sdrs.NewRepository(sqlDB)
	assignmentRepo := assignments.NewRepository(pgxPool)

	service := dashboard.NewService(meetingRepo, clientRepo, assignmentRepo, sdrRepo, dashCache, dashMetrics, logger)

	dashboardsHandler := handlers.NewDashboardHandler(service, logger)
	meetingsHandler := handlers.NewMeetingsHandler(meetingRepo, sdrRepo, service, dashCache, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Dashboards:         dashboardsHandler,
		Meetings:           meetingsHandler,
		AuthSecret:         cfg.AuthJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	var warmer *worker.Warmer
	if cfg.CacheWarmEnabled && redisClient != nil {
		warmer = worker.NewWarmer(service, sdrRepo, cfg.CacheWarmSchedule, logger)
		if err := warmer.Start(ctx); err != nil {
			logger.Error("failed to start cache warmer", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	if warmer != nil {
		warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
