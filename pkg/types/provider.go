package types

import (
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ProviderType identifies the backing AI completion service
type ProviderType string

const (
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypeMistral    ProviderType = "mistral"
	ProviderTypeOpenRouter ProviderType = "openrouter"
)

// FailureKind classifies the most recent failure recorded on a provider
type FailureKind string

const (
	// FailureKindNone means the provider has no unresolved failure
	FailureKindNone FailureKind = ""

	// FailureKindRetryable marks failures whose status code is in the
	// configured retryable set (e.g. rate limits, transient server errors)
	FailureKindRetryable FailureKind = "retryable"

	// FailureKindNonRetryable marks every other failure, including
	// transport errors that carry no status code
	FailureKindNonRetryable FailureKind = "non_retryable"
)

// Provider represents one configured remote AI backend together with its
// mutable scheduling state. Provider records are owned by the registry and
// shared by reference; the scheduler is the only component that mutates the
// priority and failure fields.
type Provider struct {
	// Type is the backing service this provider talks to
	Type ProviderType `json:"type"`

	// APIKey is the credential passed through verbatim as a bearer token.
	// It is never logged and never serialized.
	APIKey string `json:"-"`

	// Model is the opaque model identifier requested from the service
	Model string `json:"model"`

	// Priority is the scheduling key; lower values are tried earlier.
	// Mutated by the scheduler on demotion and recovery.
	Priority int `json:"priority"`

	// OriginalPriority is a snapshot of Priority taken when the provider
	// is registered. It is fixed on first registration and used as the
	// recovery target; it never changes afterwards.
	OriginalPriority int `json:"original_priority"`

	// LastFailure is the time of the most recent failure, or nil when the
	// provider has no unresolved failure. LastFailure and LastFailureKind
	// are always set and cleared together.
	LastFailure *time.Time `json:"last_failure,omitempty"`

	// LastFailureKind classifies LastFailure; FailureKindNone iff
	// LastFailure is nil
	LastFailureKind FailureKind `json:"last_failure_kind,omitempty"`

	// ExtraParams is an opaque mapping forwarded verbatim into the
	// outbound request body alongside the standard fields
	ExtraParams map[string]interface{} `json:"extra_params,omitempty"`

	// BaseURL overrides the provider type's default endpoint, for
	// self-hosted or API-compatible deployments
	BaseURL string `json:"base_url,omitempty"`

	// TokenSource, when set, supplies the bearer token instead of APIKey.
	// Use this for OAuth-authenticated deployments where tokens refresh.
	TokenSource oauth2.TokenSource `json:"-"`

	// RateLimit, when set, is awaited before each outbound request.
	// Useful for services that enforce client-side request budgets.
	RateLimit *rate.Limiter `json:"-"`

	// registered is set once the registry has fixed OriginalPriority
	registered bool
}

// Demoted reports whether the provider currently carries demotion state,
// i.e. its priority differs from the configured original
func (p *Provider) Demoted() bool {
	return p.Priority != p.OriginalPriority
}

// HasFailure reports whether the provider has an unresolved recorded failure
func (p *Provider) HasFailure() bool {
	return p.LastFailure != nil
}

// RecordFailure stamps both failure fields together so they stay consistent
func (p *Provider) RecordFailure(at time.Time, kind FailureKind) {
	p.LastFailure = &at
	p.LastFailureKind = kind
}

// ClearFailure resets both failure fields together
func (p *Provider) ClearFailure() {
	p.LastFailure = nil
	p.LastFailureKind = FailureKindNone
}

// MarkRegistered fixes OriginalPriority to the current Priority. The first
// call wins; later calls are no-ops so a provider re-added to a registry
// keeps its configured recovery target.
func (p *Provider) MarkRegistered() {
	if p.registered {
		return
	}
	p.OriginalPriority = p.Priority
	p.registered = true
}
