package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpulse-engine/internal/logging"
	"jobpulse-engine/pkg/models"
)

// Client posts sync run results to an external webhook endpoint.
type Client struct {
	url        string
	maxRetries int
	httpClient *http.Client
	logger     logging.Logger
}

// ClientConfig holds configuration for the webhook client
type ClientConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// NewClient creates a new webhook callback client
func NewClient(config *ClientConfig, logger logging.Logger) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	logger.Info("Webhook callback client created", map[string]interface{}{
		"url":         config.URL,
		"timeout":     config.Timeout.String(),
		"max_retries": config.MaxRetries,
	})

	return &Client{
		url:        config.URL,
		maxRetries: config.MaxRetries,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// syncCompletedPayload is the JSON body delivered for each completed sync run.
type syncCompletedPayload struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Run       *models.SyncRun `json:"run"`
}

// NotifySyncCompleted delivers the outcome of a sync run to the webhook,
// retrying transient failures with exponential backoff.
func (c *Client) NotifySyncCompleted(ctx context.Context, run *models.SyncRun) error {
	payload := syncCompletedPayload{
		Event:     "sync.completed",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Run:       run,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = c.deliver(ctx, body)
		if lastErr == nil {
			c.logger.Info("Webhook notification delivered", map[string]interface{}{
				"run_id":  run.RunID,
				"attempt": attempt,
			})
			return nil
		}

		c.logger.Warn("Webhook delivery attempt failed", map[string]interface{}{
			"run_id":  run.RunID,
			"attempt": attempt,
			"error":   lastErr.Error(),
		})

		if attempt < c.maxRetries {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) deliver(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "jobpulse-engine/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
