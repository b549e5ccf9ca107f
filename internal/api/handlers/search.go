package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobpulse-engine/internal/aggregator"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

var validate = validator.New()

// SearchHandler serves aggregation requests. Provider failures never
// surface here; a degraded backend just yields fewer (or fallback) jobs.
func SearchHandler(agg *aggregator.Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestID(c)
		logger := logging.GetGlobalLogger()
		start := time.Now()

		var req models.SearchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Failed to parse search request",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		if req.Options == nil {
			req.Options = optionsFromQuery(c)
		}
		if req.Page == 0 {
			req.Page = 1
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Search requested", map[string]interface{}{
			"request_id": requestID,
			"query":      req.Query,
			"country":    req.Country,
			"page":       req.Page,
		})

		result, err := agg.Search(c.Request().Context(), &req)
		if err != nil {
			logger.Error("Search failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "search_failed",
				Message:   "Aggregation could not be completed",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.SearchResponse{
			Success:        true,
			Jobs:           result.Jobs,
			Sources:        result.Sources,
			Cached:         result.Cached,
			ProcessingTime: time.Since(start),
			RequestID:      requestID,
		})
	}
}

// optionsFromQuery assembles SearchOptions from flat query parameters.
// echo's binder only fills top-level fields, so GET callers pass options
// next to the core parameters instead of a nested object.
func optionsFromQuery(c echo.Context) *models.SearchOptions {
	opts := &models.SearchOptions{}
	var present bool

	if v := c.QueryParam("distance_km"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.DistanceKm = n
			present = true
		}
	}
	if v := c.QueryParam("include_external"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.IncludeExternal = &b
			present = true
		}
	}
	if v := c.QueryParam("include_cache"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.IncludeCache = &b
			present = true
		}
	}
	if v := c.QueryParam("providers"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				opts.Providers = append(opts.Providers, p)
			}
		}
		present = present || len(opts.Providers) > 0
	}

	if !present {
		return nil
	}
	return opts
}

func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
