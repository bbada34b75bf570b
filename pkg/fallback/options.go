package fallback

import (
	"log"
	"time"
)

// Default option values applied by New when the corresponding field is
// unset.
const (
	// DefaultTimeout bounds each individual provider attempt
	DefaultTimeout = 30 * time.Second

	// DefaultRetryableErrorTimeout is the recovery delay after a
	// retryable failure
	DefaultRetryableErrorTimeout = 5 * time.Minute

	// DefaultNonRetryableErrorTimeout is the recovery delay after a
	// non-retryable failure
	DefaultNonRetryableErrorTimeout = 30 * time.Minute
)

// DefaultRetryableCodes lists the HTTP status codes treated as retryable
// when no custom set is configured: rate limits, request timeouts and
// transient server errors.
var DefaultRetryableCodes = []int{408, 429, 500, 502, 503, 504}

// Options configures a Client. The zero value of each field means "use
// the default"; Options are fixed at construction and never mutated by
// the client.
type Options struct {
	// EnablePriorityUpdates toggles demotion of providers that fail with
	// non-retryable errors. Nil means enabled.
	EnablePriorityUpdates *bool `json:"enable_priority_updates,omitempty"`

	// Timeout bounds each individual provider attempt. Exceeding it
	// cancels that attempt only; the call falls through to the next
	// provider.
	Timeout time.Duration `json:"timeout,omitempty"`

	// RetryableCodes is the set of HTTP status codes classified as
	// retryable. Empty means DefaultRetryableCodes.
	RetryableCodes []int `json:"retryable_codes,omitempty"`

	// RetryableErrorTimeout is how long a retryable failure keeps its
	// mark before lazy recovery restores the provider
	RetryableErrorTimeout time.Duration `json:"retryable_error_timeout,omitempty"`

	// NonRetryableErrorTimeout is the equivalent window for
	// non-retryable failures
	NonRetryableErrorTimeout time.Duration `json:"non_retryable_error_timeout,omitempty"`

	// EnableVerboseLogging turns on attempt-level log lines. Credentials
	// are never logged.
	EnableVerboseLogging bool `json:"enable_verbose_logging,omitempty"`

	// Logger receives the attempt-level log lines when verbose logging is
	// enabled. Nil means the standard logger.
	Logger *log.Logger `json:"-"`
}

// withDefaults returns a copy of o with every unset field filled in
func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if len(o.RetryableCodes) == 0 {
		o.RetryableCodes = DefaultRetryableCodes
	}
	if o.RetryableErrorTimeout == 0 {
		o.RetryableErrorTimeout = DefaultRetryableErrorTimeout
	}
	if o.NonRetryableErrorTimeout == 0 {
		o.NonRetryableErrorTimeout = DefaultNonRetryableErrorTimeout
	}
	return o
}

// priorityUpdatesEnabled resolves the tri-state toggle
func (o Options) priorityUpdatesEnabled() bool {
	return o.EnablePriorityUpdates == nil || *o.EnablePriorityUpdates
}
