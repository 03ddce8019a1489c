package ratelimit

import (
	"errors"
	"fmt"
)

// ErrWaitCanceled is returned by Acquire when the caller's context is done
// before capacity became available. The returned error also wraps the
// context error (context.Canceled or context.DeadlineExceeded).
var ErrWaitCanceled = errors.New("rate limit wait canceled")

// ConfigError reports an invalid limiter configuration.
type ConfigError struct {
	// Field is the offending configuration field ("limit", "window", "strategy").
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rate limiter %s: %s", e.Field, e.Message)
}

func canceled(cause error) error {
	return fmt.Errorf("%w: %w", ErrWaitCanceled, cause)
}
