// Package fallback provides the call orchestrator: a client that tries
// configured providers in priority order until one answers, classifies
// failures, temporarily de-prioritizes providers that fail hard, and
// restores them after a recovery window or on their next success.
//
// Concurrency model: attempts within a call are strictly sequential, with
// one outbound request in flight at a time. Structural registry changes
// are synchronized, but two concurrent Complete calls sharing a registry
// race on provider scheduling fields; callers that need stronger
// guarantees should serialize their calls.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cecil-the-coder/llm-fallback/pkg/providers"
	"github.com/cecil-the-coder/llm-fallback/pkg/registry"
	"github.com/cecil-the-coder/llm-fallback/pkg/scheduler"
	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// Client orchestrates sequential fallback across the registered providers
type Client struct {
	registry  *registry.Registry
	opts      Options
	retryable map[int]bool
	windows   scheduler.RecoveryWindows
	service   providers.CompletionService

	// now is injectable so tests can simulate elapsed recovery windows
	now func() time.Time
}

// New creates a client over a non-empty ordered provider list. A nil opts
// uses all defaults. Construction fails with types.ErrNoProviders when the
// list is empty.
func New(provs []*types.Provider, opts *Options) (*Client, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o = o.withDefaults()

	reg, err := registry.New(provs)
	if err != nil {
		return nil, err
	}

	retryable := make(map[int]bool, len(o.RetryableCodes))
	for _, code := range o.RetryableCodes {
		retryable[code] = true
	}

	return &Client{
		registry:  reg,
		opts:      o,
		retryable: retryable,
		windows: scheduler.RecoveryWindows{
			Retryable:    o.RetryableErrorTimeout,
			NonRetryable: o.NonRetryableErrorTimeout,
		},
		service: providers.NewHTTPCompletionServiceWithTimeout(o.Timeout),
		now:     time.Now,
	}, nil
}

// SetCompletionService replaces the outbound completion boundary. Intended
// for tests and for callers that need a custom transport.
func (c *Client) SetCompletionService(svc providers.CompletionService) {
	c.service = svc
}

// Complete sends the prompt to the highest-priority available provider,
// falling back through the remaining providers in order. Each provider is
// attempted at most once. On success the result carries the answering
// provider's raw payload plus the errors of any providers that failed
// first; when every provider fails, the returned error is a
// *types.ExhaustedError enumerating each failure.
func (c *Client) Complete(ctx context.Context, prompt string) (*types.Result, error) {
	if prompt == "" {
		return nil, types.ErrEmptyPrompt
	}

	requestID := uuid.NewString()

	// Providers queued for demotion; applied once a provider succeeds or
	// the list is exhausted, so within-call order stays fixed.
	var pendingDemotions []*types.Provider
	var collected []*types.CallError

	for _, p := range c.registry.Providers() {
		if scheduler.CheckAndRecover(p, c.windows, c.now()) {
			c.registry.Sort()
			c.logf("request %s: provider %s recovered to priority %d", requestID, p.Type, p.Priority)
		}

		raw, err := c.attempt(ctx, p, prompt)
		if err == nil {
			if scheduler.RecoverOnSuccess(p) {
				c.registry.Sort()
			}
			if len(pendingDemotions) > 0 {
				c.registry.Demote(pendingDemotions)
			}
			c.logf("request %s: provider %s succeeded", requestID, p.Type)

			result := &types.Result{
				Raw:       raw,
				Provider:  p.Type,
				Model:     p.Model,
				RequestID: requestID,
			}
			if len(collected) > 0 {
				result.Errors = collected
			}
			return result, nil
		}

		callErr := c.classify(p, err, requestID)
		collected = append(collected, callErr)

		if !callErr.Retryable && c.opts.priorityUpdatesEnabled() {
			pendingDemotions = append(pendingDemotions, p)
		}

		// Failure bookkeeping happens regardless of retryability and of
		// the demotion toggle; it feeds the lazy recovery check.
		p.RecordFailure(c.now(), callErr.Kind())

		c.logf("request %s: provider %s failed: %v", requestID, p.Type, callErr)
	}

	if len(pendingDemotions) > 0 {
		c.registry.Demote(pendingDemotions)
	}
	return nil, &types.ExhaustedError{Errors: collected}
}

// attempt performs one bounded outbound call against a single provider
func (c *Client) attempt(ctx context.Context, p *types.Provider, prompt string) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	return c.service.Complete(attemptCtx, p, prompt)
}

// classify turns an attempt error into a CallError. A response with a
// status code is retryable iff the code is in the configured set;
// transport failures (network errors, attempt timeouts) carry no status
// code and default to non-retryable.
func (c *Client) classify(p *types.Provider, err error, requestID string) *types.CallError {
	callErr := &types.CallError{
		Provider:  p.Type,
		Model:     p.Model,
		Message:   err.Error(),
		Cause:     err,
		RequestID: requestID,
	}

	var statusErr *providers.StatusError
	if errors.As(err, &statusErr) {
		callErr.StatusCode = statusErr.StatusCode
		callErr.Raw = statusErr.Body
		callErr.RetryAfter = statusErr.RetryAfter
		callErr.Retryable = c.retryable[statusErr.StatusCode]
	}
	return callErr
}

// GetProviders returns a snapshot of the ordered provider list
func (c *Client) GetProviders() []*types.Provider {
	return c.registry.Providers()
}

// AddProvider registers an additional provider
func (c *Client) AddProvider(p *types.Provider) {
	c.registry.Add(p)
}

// RemoveProvider removes the first registry entry identical to p; no-op
// when p is not registered
func (c *Client) RemoveProvider(p *types.Provider) {
	c.registry.Remove(p)
}

func (c *Client) logf(format string, args ...interface{}) {
	if !c.opts.EnableVerboseLogging {
		return
	}
	if c.opts.Logger != nil {
		c.opts.Logger.Printf("llm-fallback: "+format, args...)
		return
	}
	log.Printf("llm-fallback: "+format, args...)
}
