package utils

import (
	"errors"
	"fmt"
	"time"
)

// ErrSkippable classifies a listing-level failure that retrying cannot fix
// (bot-challenge page, malformed URL). The caller drops the listing and the
// batch continues.
var ErrSkippable = errors.New("skippable listing failure")

// Skippable wraps err so that RetryConfig.Do gives up immediately and the
// caller can recognize the listing as droppable.
func Skippable(err error) error {
	return fmt.Errorf("%w: %w", ErrSkippable, err)
}

// IsSkippable reports whether err was classified with Skippable.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrSkippable)
}

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off retry logic. Skippable failures
// are returned immediately without further attempts.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsSkippable(lastErr) {
			return lastErr
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
