package submitter

import (
	"fmt"
	"time"
)

// APIError represents a non-2xx response from the registry.
// The request was delivered; the registry rejected it.
type APIError struct {
	// RequestID identifies the submission (X-Request-ID)
	RequestID string

	// StatusCode is the HTTP status code
	StatusCode int

	// Body is the beginning of the response body
	Body string

	// RetryAfter is the Retry-After hint, if the registry sent one
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("registry rejected request %s (status %d): %s", e.RequestID, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("registry rejected request %s (status %d)", e.RequestID, e.StatusCode)
}

// ErrorType returns the error classification used in traces.
func (e *APIError) ErrorType() string { return "api" }

// TimeoutError represents a request that exceeded the HTTP client timeout.
type TimeoutError struct {
	// RequestID identifies the submission
	RequestID string

	// Timeout is the configured timeout duration
	Timeout time.Duration

	// Cause is the underlying client error
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s timed out after %s", e.RequestID, e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ErrorType returns the error classification used in traces.
func (e *TimeoutError) ErrorType() string { return "timeout" }

// TransportError represents a network or I/O failure before a response
// was received.
type TransportError struct {
	// RequestID identifies the submission
	RequestID string

	// Endpoint is the URL that could not be reached
	Endpoint string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s to %s failed: %v", e.RequestID, e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorType returns the error classification used in traces.
func (e *TransportError) ErrorType() string { return "transport" }

// ConfigError represents an invalid submitter or transport configuration.
type ConfigError struct {
	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("submitter configuration error for field %q: %s", e.Field, e.Message)
}
