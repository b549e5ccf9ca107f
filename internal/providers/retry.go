package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// retryStatus reports whether an HTTP status is worth another attempt.
// Client errors other than 429 are permanent.
func retryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// doWithRetry issues the request up to maxRetries+1 times with exponential
// backoff, reading and closing the body of every discarded response. The
// caller owns the body of the returned response.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error), maxRetries int) (*http.Response, error) {
	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			continue
		}
		if retryStatus(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("upstream returned %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}
