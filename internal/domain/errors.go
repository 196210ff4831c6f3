package domain

import "errors"

// ErrType classifies errors for the TUI to display appropriate messages.
type ErrType int

const (
	ErrUnknown       ErrType = iota
	ErrNoKubeconfig          // kubeconfig file not found
	ErrBadKubeconfig         // kubeconfig is malformed
	ErrNoContext             // no current context set
	ErrUnreachable           // cluster not reachable (timeout/DNS)
	ErrTokenExpired          // 401 Unauthorized
	ErrForbidden             // 403 Forbidden
	ErrNotFound              // 404 Not Found
	ErrConflict              // 409 Conflict
	ErrRateLimited           // 429 Too Many Requests
	ErrServerError           // 500+
	ErrTLS                   // TLS/cert error
	ErrStaleCursor           // 410 Gone, watch cursor too old to resume
	ErrValidation            // rejected input, never sent to the server
)

// APIError wraps a K8s API error with classification.
type APIError struct {
	Type    ErrType
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// TypeOf extracts the classification from err, unwrapping as needed.
func TypeOf(err error) ErrType {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrUnknown
}

// IsForbidden reports whether err is a permission error.
func IsForbidden(err error) bool { return TypeOf(err) == ErrForbidden }

// IsStaleCursor reports whether err means the watch cursor expired and the
// collection must be relisted from scratch.
func IsStaleCursor(err error) bool { return TypeOf(err) == ErrStaleCursor }
