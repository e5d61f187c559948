package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Valuation/internal/api"
	"github.com/MikeSquared-Agency/Valuation/internal/config"
	"github.com/MikeSquared-Agency/Valuation/internal/hermes"
	"github.com/MikeSquared-Agency/Valuation/internal/report"
	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Engine
	ref := valuation.DefaultReference()
	if cfg.Engine.ReferencePath != "" {
		ref, err = valuation.LoadReference(cfg.Engine.ReferencePath)
		if err != nil {
			logger.Error("failed to load reference tables", "path", cfg.Engine.ReferencePath, "error", err)
			os.Exit(1)
		}
	}
	engine, err := valuation.NewEngine(ref, valuation.DefaultPolicy())
	if err != nil {
		logger.Error("invalid engine tables", "error", err)
		os.Exit(1)
	}
	logger.Info("engine ready", "technologies", len(ref.Technologies))

	// Store
	db, err := store.Open(ctx, store.Config{Driver: cfg.Store.Driver, Path: cfg.Store.Path, URL: cfg.Store.URL})
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("store ready", "driver", cfg.Store.Driver)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Reports
	var cache report.Cache = report.NopCache{}
	if cfg.Report.RedisURL != "" {
		rc, err := report.NewRedisCache(ctx, cfg.Report.RedisURL, cfg.CacheTTL())
		if err != nil {
			logger.Warn("failed to connect to redis, report caching disabled", "error", err)
		} else {
			cache = rc
			defer rc.Close()
			logger.Info("report cache enabled", "ttl", cfg.CacheTTL())
		}
	}
	var renderer report.Renderer
	pdf := report.NewPDFRenderer(cfg.Report.ChromePath, cfg.RenderTimeout())
	if pdf.Available() {
		renderer = pdf
	} else {
		logger.Warn("no chromium binary found, pdf reports disabled")
	}
	reports := report.NewService(db, renderer, cache, logger)

	// API server
	router := api.NewRouter(engine, db, reports, hermesClient, cfg.Server, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
