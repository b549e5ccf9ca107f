package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRequestID returns a unique ID for request and sync run tracking.
func GenerateRequestID() string {
	return uuid.New().String()
}

// FormatDuration renders a duration in the largest sensible unit for
// log output.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
