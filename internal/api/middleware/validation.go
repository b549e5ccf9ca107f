package middleware

import (
	"net/http"
	"time"

	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Bodies past this size are rejected outright; search and sync requests
// are tiny JSON documents.
const maxBodyBytes = 1 << 20

// RequestValidation assigns every request an ID and rejects oversized
// bodies before they reach a handler.
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)

			if c.Request().Method == http.MethodPost {
				if c.Request().ContentLength > maxBodyBytes {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "request_too_large",
						Message:   "Request body too large",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
			}

			return next(c)
		}
	}
}
