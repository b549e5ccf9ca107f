package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobpulse-engine/internal/aggregator"
	"jobpulse-engine/internal/api/handlers"
	"jobpulse-engine/internal/api/middleware"
	"jobpulse-engine/internal/background"
	"jobpulse-engine/internal/cache"
	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/providers"
	"jobpulse-engine/internal/ratelimit"
	"jobpulse-engine/internal/store"
)

// Dependencies bundles everything the route table needs.
type Dependencies struct {
	Config      *config.Config
	Aggregator  *aggregator.Aggregator
	Registry    *providers.Registry
	RateLimiter *ratelimit.Limiter
	Store       store.Store
	Cache       cache.ResultCache
	TaskManager *background.Manager
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(deps.Config.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler(deps.Store, deps.Cache))
		health.GET("/ready", handlers.ReadinessHandler(deps.Store))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("/search", handlers.SearchHandler(deps.Aggregator))
			jobs.POST("/search", handlers.SearchHandler(deps.Aggregator))
		}

		sync := v1.Group("/sync")
		{
			sync.POST("", handlers.TriggerSyncHandler(deps.TaskManager))
			sync.GET("", handlers.SyncListHandler(deps.TaskManager))
			sync.GET("/:id", handlers.SyncStatusHandler(deps.TaskManager))
		}

		v1.GET("/providers/stats", handlers.ProviderStatsHandler(deps.Registry, deps.RateLimiter))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "JobPulse Engine",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
