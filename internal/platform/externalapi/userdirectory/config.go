// Package userdirectory provides a client for the external user directory service.
package userdirectory

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// Config holds configuration for the user directory client.
type Config struct {
	BaseURL string        // Base URL of the directory (e.g., "http://users.internal/api")
	Timeout time.Duration // HTTP request timeout
	// RateLimit is the maximum number of lookups per second. 0 means unlimited.
	RateLimit int
}

// LoadConfig loads user directory configuration from environment variables.
// An empty BaseURL means the directory is not configured.
func LoadConfig() Config {
	timeout := defaultTimeout
	if raw := os.Getenv("USER_DIRECTORY_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			slog.Warn("invalid USER_DIRECTORY_TIMEOUT; using default", "value", raw, "default", defaultTimeout)
		} else {
			timeout = d
		}
	}
	rateLimit := 0
	if raw := os.Getenv("USER_DIRECTORY_RATE_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			slog.Warn("invalid USER_DIRECTORY_RATE_LIMIT; lookups are not limited", "value", raw)
		} else {
			rateLimit = n
		}
	}
	return Config{
		BaseURL:   strings.TrimRight(os.Getenv("USER_DIRECTORY_URL"), "/"),
		Timeout:   timeout,
		RateLimit: rateLimit,
	}
}
