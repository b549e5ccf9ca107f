package utils

import (
	"fmt"
	"net/http"
)

// CustomError carries an HTTP-style status code next to the message so
// internal failures can be classified without string matching.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewProviderError describes a failed upstream provider call. Provider
// errors are recovered at the aggregation boundary and never propagate
// to API clients.
func NewProviderError(provider, detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: fmt.Sprintf("Provider %s failed", provider),
		Detail:  detail,
	}
}

// NewRateLimitError signals an exhausted per-provider budget. Callers
// skip or delay the call; the error is never surfaced to API clients.
func NewRateLimitError(provider string) *CustomError {
	return &CustomError{
		Code:    http.StatusTooManyRequests,
		Message: fmt.Sprintf("Rate limit exhausted for provider %s", provider),
	}
}

// NewStorageError describes a per-record persistence failure during
// upsert. It lands in the batch error list without aborting the batch.
func NewStorageError(identity, detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: fmt.Sprintf("Storage operation failed for %s", identity),
		Detail:  detail,
	}
}
