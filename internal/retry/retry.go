// Package retry repeats a failing operation with a fixed or linear backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config controls how often and how patiently an operation is retried.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt n waits n*Delay
}

// Once runs the operation a single time.
var Once = Config{MaxAttempts: 1}

// WithRetry calls fn until it succeeds, the attempts run out or ctx is done.
func WithRetry(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := cfg.Delay
		if cfg.Backoff {
			delay = time.Duration(attempt) * cfg.Delay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
