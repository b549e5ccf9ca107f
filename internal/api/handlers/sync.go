package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobpulse-engine/internal/background"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/pkg/models"
)

// TriggerSyncHandler accepts a sync request and schedules it in the
// background, returning 202 and the process ID to poll.
func TriggerSyncHandler(manager *background.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		var req models.SyncRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Failed to parse sync request",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		processID, err := manager.Trigger(&req)
		if err != nil {
			logger.Error("Failed to schedule sync run", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "sync_trigger_failed",
				Message:   "Could not schedule sync run",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Sync run scheduled", map[string]interface{}{
			"request_id": reqID,
			"process_id": processID,
		})
		return c.JSON(http.StatusAccepted, map[string]interface{}{
			"success":    true,
			"process_id": processID,
			"request_id": reqID,
		})
	}
}

// SyncStatusHandler returns the state of a previously triggered run.
func SyncStatusHandler(manager *background.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		result, err := manager.Status(c.Request().Context(), c.Param("id"))
		if errors.Is(err, background.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "not_found",
				Message:   "Unknown or expired process ID",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "status_lookup_failed",
				Message:   err.Error(),
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusOK, result)
	}
}

// SyncListHandler returns the retained results of recent runs.
func SyncListHandler(manager *background.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		results, err := manager.Recent(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "list_failed",
				Message:   err.Error(),
				RequestID: requestID(c),
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"runs":    results,
		})
	}
}
