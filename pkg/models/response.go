package models

import "time"

// SearchResponse is returned by the aggregator entry point. Sources maps
// provider names to the number of records each contributed after dedup.
type SearchResponse struct {
	Success        bool           `json:"success"`
	Jobs           []CanonicalJob `json:"jobs"`
	Sources        map[string]int `json:"sources"`
	Cached         bool           `json:"cached"`
	ProcessingTime time.Duration  `json:"processing_time"`
	RequestID      string         `json:"request_id"`
}

// SyncResponse wraps the statistics of a completed sync run.
type SyncResponse struct {
	Success   bool    `json:"success"`
	Run       SyncRun `json:"run"`
	RequestID string  `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
