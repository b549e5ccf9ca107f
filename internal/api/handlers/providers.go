package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobpulse-engine/internal/providers"
	"jobpulse-engine/internal/ratelimit"
)

// ProviderStatsHandler exposes the enabled adapters and their current
// rate-budget usage for operators.
func ProviderStatsHandler(registry *providers.Registry, limiter *ratelimit.Limiter) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"enabled": registry.Names(),
			"budgets": limiter.Snapshot(),
		})
	}
}
