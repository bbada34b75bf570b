package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoProviders is returned when a client is constructed without any
// providers
var ErrNoProviders = errors.New("at least one provider must be configured")

// ErrEmptyPrompt is returned by Complete when the prompt is empty; no
// provider is attempted
var ErrEmptyPrompt = errors.New("prompt must be a non-empty string")

// CallError represents a single failed attempt against one provider.
// Attempt failures are never fatal on their own; they are collected while
// the orchestrator falls back to the next provider.
type CallError struct {
	Provider   ProviderType    // Which provider failed
	Model      string          // Model that was requested
	Message    string          // Human-readable message
	StatusCode int             // HTTP status code (0 if not applicable)
	Retryable  bool            // Whether the status code is in the retryable set
	Raw        json.RawMessage // Raw error payload from the service, if any
	RetryAfter int             // Seconds to wait per the service's Retry-After header (0 if absent)
	RequestID  string          // Request ID of the call that produced this error
	Cause      error           // Wrapped original error
}

// Error implements the error interface
func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (status=%d, retryable=%t)", e.Provider, e.Message, e.StatusCode, e.Retryable)
	}
	return fmt.Sprintf("[%s] %s (retryable=%t)", e.Provider, e.Message, e.Retryable)
}

// Unwrap returns the original error for errors.Is/As
func (e *CallError) Unwrap() error {
	return e.Cause
}

// Kind maps the retryability flag onto the failure kind recorded on the
// provider
func (e *CallError) Kind() FailureKind {
	if e.Retryable {
		return FailureKindRetryable
	}
	return FailureKindNonRetryable
}

// ExhaustedError is returned when every configured provider has been
// attempted and all failed. It aggregates the per-provider errors in
// attempt order.
type ExhaustedError struct {
	Errors []*CallError
}

// Error enumerates every provider's identity and failure message
func (e *ExhaustedError) Error() string {
	var b strings.Builder
	b.WriteString("all providers failed: ")
	for i, ce := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", ce.Provider, ce.Message)
	}
	return b.String()
}

// Unwrap exposes the underlying call errors to errors.Is/As
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ce := range e.Errors {
		errs[i] = ce
	}
	return errs
}
