package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobpulse-engine/internal/aggregator"
	"jobpulse-engine/internal/api/routes"
	"jobpulse-engine/internal/background"
	"jobpulse-engine/internal/cache"
	"jobpulse-engine/internal/callback"
	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/internal/providers"
	"jobpulse-engine/internal/ratelimit"
	"jobpulse-engine/internal/scheduler"
	"jobpulse-engine/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging before anything that logs
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()
	logger.Info("Starting JobPulse Engine")

	ctx := context.Background()

	// Storage
	st, err := store.NewPostgresStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer st.Close()

	// Result cache
	results := cache.New(cfg)
	defer results.Close()

	// Provider registry; adapters without credentials disable themselves
	registry := providers.NewRegistry(
		providers.NewAdzuna(cfg.Providers.Adzuna),
		providers.NewJSearch(cfg.Providers.JSearch),
		providers.NewJooble(cfg.Providers.Jooble),
		providers.NewRemotive(cfg.Providers.Remotive, true),
	)
	logger.Info("Provider registry initialized", map[string]interface{}{
		"enabled": registry.Names(),
	})

	// Rate limiter with per-provider budgets
	limiter := ratelimit.New()
	for name, settings := range map[string]config.ProviderSettings{
		"adzuna":   cfg.Providers.Adzuna,
		"jsearch":  cfg.Providers.JSearch,
		"jooble":   cfg.Providers.Jooble,
		"remotive": cfg.Providers.Remotive,
	} {
		limiter.Register(name, ratelimit.Quota{
			PerMinute: settings.RequestsPerMinute,
			PerDay:    settings.RequestsPerDay,
		})
	}

	agg := aggregator.New(cfg, registry, limiter, results)
	upserter := store.NewUpserter(st, cfg.Upsert.Concurrency)

	sched := scheduler.New(cfg, agg, upserter, st)
	if cfg.Webhook.URL != "" {
		notifier, err := callback.NewClient(&callback.ClientConfig{
			URL:        cfg.Webhook.URL,
			Timeout:    cfg.Webhook.Timeout,
			MaxRetries: cfg.Webhook.MaxRetries,
		}, logger)
		if err != nil {
			logger.Error("Failed to create webhook client", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			sched.SetNotifier(notifier)
		}
	}
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	taskManager := background.NewManager(sched)
	taskManager.Start()

	// HTTP surface
	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, routes.Dependencies{
		Config:      cfg,
		Aggregator:  agg,
		Registry:    registry,
		RateLimiter: limiter,
		Store:       st,
		Cache:       results,
		TaskManager: taskManager,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Stopping scheduler...")
		sched.Stop()

		logger.Info("Stopping task manager...")
		taskManager.Stop()

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete")
	}()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
