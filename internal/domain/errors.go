package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals invalid search or aggregation parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstream signals a failure of the remote record service.
	ErrUpstream = errors.New("upstream record service error")
	// ErrPredictor signals a failure of the completion provider.
	ErrPredictor = errors.New("predictor error")
	// ErrPredictorQuotaExceeded signals an exhausted completion token budget.
	ErrPredictorQuotaExceeded = errors.New("predictor token budget exceeded")
	// ErrCorruptHistory signals an unreadable persisted search history.
	ErrCorruptHistory = errors.New("corrupt search history")
	// ErrSessionNotFound signals an unknown or expired view session.
	ErrSessionNotFound = errors.New("session not found")
)

// UpstreamError wraps ErrUpstream with the HTTP status returned by the record service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrUpstream.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrUpstream.Error(), e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an upstream error for a non-2xx response.
func NewUpstreamError(status int, message string) error {
	return &UpstreamError{StatusCode: status, Message: message}
}
