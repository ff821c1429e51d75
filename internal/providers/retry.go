package providers

import (
	"context"
	"fmt"
	"time"
)

type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	_, ok := err.(*authError)
	return ok
}

func isRetryable(err error) bool {
	switch err.(type) {
	case *rateLimitError, *serverError:
		return true
	default:
		return false
	}
}

// backoffBase is the unit for exponential backoff. Tests shrink it.
var backoffBase = time.Second

func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * backoffBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
