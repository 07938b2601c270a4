package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecoweather/eco-weather-service/internal/client"
	"github.com/ecoweather/eco-weather-service/internal/config"
	httphandler "github.com/ecoweather/eco-weather-service/internal/http"
	"github.com/ecoweather/eco-weather-service/internal/observability"
	"github.com/ecoweather/eco-weather-service/internal/recordlog"
	"github.com/ecoweather/eco-weather-service/internal/service"
	"github.com/ecoweather/eco-weather-service/internal/upstream"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewOpenMeteoClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.AirQualityURL, cfg.UpstreamTimeout)
	if err != nil {
		logger.Fatal("open-meteo client", zap.Error(err))
	}

	var records recordlog.Logger
	var sqliteCloser *recordlog.SQLiteLogger
	switch cfg.RecordBackend {
	case "sqlite":
		sl, err := recordlog.NewSQLiteLogger(cfg.RecordPath)
		if err != nil {
			logger.Fatal("sqlite record log", zap.Error(err))
		}
		sqliteCloser = sl
		records = sl
		logger.Info("record log backend: sqlite", zap.String("path", cfg.RecordPath))
	default:
		records = recordlog.NewXLSXLogger(cfg.RecordPath)
		logger.Info("record log backend: xlsx", zap.String("path", cfg.RecordPath))
	}

	reportService := service.NewReportService(weatherClient, records, cfg.RecordBackend)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	healthConfig := httphandler.HealthConfig{
		Window:   cfg.HealthWindow,
		ErrorPct: cfg.HealthErrorPct,
	}
	handler := httphandler.NewHandler(reportService, upstream.Default, healthConfig, logger, cfg.CityMinLength, cfg.CityMaxLength)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	reportRouter := router.PathPrefix("/report").Subrouter()
	reportRouter.Use(httphandler.RateLimitMiddleware(limiter))
	reportRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	reportRouter.HandleFunc("/{city}", handler.GetReport).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	handler.SetShuttingDown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if sqliteCloser != nil {
		if err := sqliteCloser.Close(); err != nil {
			logger.Error("sqlite close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
