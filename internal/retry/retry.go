// Package retry retries transient failures with exponential backoff.
//
// Camera devices commonly refuse to open for a short while after another
// process released them, and snapshot endpoints drop the odd request. Both
// are retried here rather than surfaced to the user at once.
//
//	cfg := retry.Config{
//	    MaxAttempts:    3,
//	    InitialBackoff: 200 * time.Millisecond,
//	    MaxBackoff:     2 * time.Second,
//	}
//
//	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
//	    return openDevice(ctx)
//	}, isBusy)
//
// The wait before attempt n (n >= 2) is InitialBackoff * 2^(n-2), capped at
// MaxBackoff, plus jitter that grows with the attempt number. A cancelled
// context ends the loop immediately with the context error.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Config defines the retry behavior.
type Config struct {
	// MaxAttempts is the total number of calls, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait. Zero means no cap.
	MaxBackoff time.Duration

	// Jitter adds up to this fraction of the wait (0.0 to 1.0), scaled by
	// attempt / MaxAttempts.
	Jitter float64

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ShouldRetryFunc reports whether err is transient.
// A nil ShouldRetryFunc retries every error.
type ShouldRetryFunc func(error) bool

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The final error wraps the last error from fn.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, shouldRetry ShouldRetryFunc) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := Backoff(cfg, attempt-1)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, lastErr, wait)
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		lastErr = err
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// Backoff returns the wait after the given number of failed attempts.
func Backoff(cfg Config, failed int) time.Duration {
	if failed < 1 {
		return 0
	}

	multiplier := math.Pow(2, float64(failed-1))
	backoff := time.Duration(multiplier * float64(cfg.InitialBackoff))

	if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
		backoff = cfg.MaxBackoff
	}

	if cfg.Jitter > 0 && cfg.MaxAttempts > 0 {
		backoff += time.Duration(float64(backoff) * cfg.Jitter * float64(failed) / float64(cfg.MaxAttempts))
	}

	return backoff
}
