package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobpulse-engine/internal/cache"
	"jobpulse-engine/internal/store"
	"jobpulse-engine/pkg/models"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthHandler reports overall service health including backend checks.
func HealthHandler(st store.Store, results cache.ResultCache) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}
		status := "healthy"
		code := http.StatusOK

		ctx := c.Request().Context()
		if err := st.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
		if err := results.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "ok"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// ReadinessHandler reports whether the service can take traffic. Storage
// must be reachable; a cold cache is fine.
func ReadinessHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := st.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
				Status:    "not_ready",
				Timestamp: time.Now(),
				Version:   version,
				Uptime:    time.Since(startTime),
				Checks:    map[string]string{"database": err.Error()},
			})
		}
		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "ready",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
		})
	}
}

// LivenessHandler answers liveness probes without touching any backend.
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
	})
}
