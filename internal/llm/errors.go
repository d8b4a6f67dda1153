package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies provider failures.
type ErrorKind string

// Error kinds
const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindNetwork   ErrorKind = "network"
	KindTimeout   ErrorKind = "timeout"
	KindCanceled  ErrorKind = "canceled"
	KindMalformed ErrorKind = "malformed"
	KindUpstream  ErrorKind = "upstream"
	KindRequest   ErrorKind = "request"
)

// ProviderError represents a failed completion.
type ProviderError struct {
	Provider   Provider
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Transient reports whether retrying may succeed.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case KindRateLimit, KindNetwork, KindUpstream:
		return true
	default:
		return false
	}
}

// IsProviderError reports whether err is or wraps a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// kindForStatus maps an HTTP status to an error kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUpstream
	default:
		return KindRequest
	}
}

// contextError converts a context failure into a ProviderError.
// parent distinguishes caller cancellation from the per-call timeout.
func contextError(provider Provider, parent context.Context, err error) *ProviderError {
	if parent.Err() != nil && errors.Is(parent.Err(), context.Canceled) {
		return &ProviderError{Provider: provider, Kind: KindCanceled, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: KindTimeout, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Provider: provider, Kind: KindCanceled, Cause: err}
	}
	return nil
}
