package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"time"

	"scadenze/internal/cache"
	"scadenze/internal/cli"
	apphttp "scadenze/internal/http"
	applog "scadenze/internal/log"
	"scadenze/internal/services"
	"scadenze/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting recurring-worker",
		applog.FieldBackend, cfg.DataBackend,
		"refresh_interval", cfg.RefreshInterval)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()
	ctx = applog.WithContext(ctx, logger)

	feed, err := cli.OpenFeed(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open transaction feed", "error", err)
		os.Exit(1)
	}
	defer feed.Close()

	fc, err := cli.ForecastConfig(cfg)
	if err != nil {
		logger.Error("Invalid forecast configuration", "error", err)
		os.Exit(1)
	}

	categorizer := cli.NewCategorizer(ctx, logger, cfg, feed.Hints)

	deps := worker.Deps{Caches: cache.NewManager()}
	var publisher services.AlertPublisher
	if client := cli.ConnectAMQP(ctx, logger, cfg); client != nil {
		defer client.Close()
		publisher = client
		deps.Consumer = client
	}

	if feed.Cleaner != nil {
		deps.Caches.Register(cfg.DataBackend, feed.Cleaner)
	}
	if inv, ok := feed.Lister.(interface{ Invalidate() }); ok {
		deps.Invalidate = inv.Invalidate
	}

	deps.Forecaster = services.NewForecastService(feed.Lister, categorizer, publisher, fc)

	w := worker.NewForecastWorker(deps, worker.Config{
		RefreshInterval:    cfg.RefreshInterval,
		CacheSweepInterval: 10 * time.Minute,
		RunOnStart:         true,
	})

	if cfg.HTTPAddr != "" {
		srv := apphttp.NewServer(cfg.HTTPAddr, w)
		go func() {
			logger.Info("Status API listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				logger.Error("Status API stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Status API shutdown failed", "error", err)
			}
		}()
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	if res, ok := w.Last(); ok {
		logger.Info("Recurring-worker shutdown complete",
			applog.FieldRunID, res.RunID,
			"events", len(res.Events))
		return
	}
	logger.Info("Recurring-worker shutdown complete")
}
