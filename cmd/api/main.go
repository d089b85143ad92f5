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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xndbogdan/doctor-appointments-api/internal/api/router"
	"github.com/xndbogdan/doctor-appointments-api/internal/app/bootstrap"
	"github.com/xndbogdan/doctor-appointments-api/internal/bookings"
	appconfig "github.com/xndbogdan/doctor-appointments-api/internal/config"
	"github.com/xndbogdan/doctor-appointments-api/internal/doctors"
	"github.com/xndbogdan/doctor-appointments-api/internal/observability/metrics"
	"github.com/xndbogdan/doctor-appointments-api/internal/patients"
	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
	"github.com/xndbogdan/doctor-appointments-api/internal/slots"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

func main() {
	// Load .env in development; production injects real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting doctor-appointments API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	loc := cfg.Location()

	pool, err := bootstrap.BuildPgxPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB, err := bootstrap.BuildSQLDB(ctx, cfg)
	if err != nil {
		logger.Error("failed to open sql handle", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	cache := bootstrap.BuildAvailabilityCache(redisClient, cfg, logger)

	registry := prometheus.NewRegistry()
	schedMetrics := metrics.NewSchedulingMetrics(registry)

	// Repositories
	doctorsRepo := doctors.NewRepository(sqlDB)
	patientsRepo := patients.NewRepository(sqlDB)
	patternsRepo := patterns.NewRepository(pool)
	slotsRepo := slots.NewRepository(pool)
	bookingsRepo := bookings.NewRepository(pool)

	// Domain services
	availability := slots.NewAvailabilityService(patternsRepo, slotsRepo, cache, schedMetrics, logger, loc)
	resolver := slots.NewBookingResolver(pool, patternsRepo, patientsRepo, bookingsRepo, cache, schedMetrics, logger, loc)

	// Handlers
	routerCfg := &router.Config{
		Logger:             logger,
		DoctorsHandler:     doctors.NewHandler(doctorsRepo, logger),
		PatientsHandler:    patients.NewHandler(patientsRepo, logger),
		PatternsHandler:    patterns.NewHandler(patternsRepo, doctorsRepo, cache, logger),
		SlotsHandler:       slots.NewHandler(availability, resolver, doctorsRepo, logger, loc),
		BookingsHandler:    bookings.NewHandler(bookingsRepo, patientsRepo, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingRatePerSec:  cfg.BookingRatePerSec,
		BookingBurst:       cfg.BookingBurst,
	}
	r := router.New(routerCfg)

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

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
