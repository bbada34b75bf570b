// Package providers implements the outbound completion boundary. It maps
// each provider type to its fixed endpoint, builds the JSON payload for a
// single-prompt completion, and surfaces non-success responses with their
// status code and raw error body. Classification of failures is the
// orchestrator's job; this package only reports what the wire said.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	internalhttp "github.com/cecil-the-coder/llm-fallback/internal/http"
	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// CompletionService performs a single completion attempt against one
// provider. Implementations must surface a *StatusError for non-success
// HTTP responses; any other error is treated as a transport failure with
// no status code.
type CompletionService interface {
	Complete(ctx context.Context, p *types.Provider, prompt string) (json.RawMessage, error)
}

// StatusError reports a non-success HTTP response from a provider,
// carrying the status code used for retryability classification and the
// raw error payload.
type StatusError struct {
	Provider   types.ProviderType
	StatusCode int
	Body       json.RawMessage

	// RetryAfter is the parsed Retry-After header in seconds, 0 when the
	// service sent none
	RetryAfter int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// HTTPCompletionService is the production CompletionService backed by the
// shared JSON HTTP client.
type HTTPCompletionService struct {
	client *internalhttp.HTTPClient
}

// NewHTTPCompletionService creates a completion service. A nil client gets
// the default transport configuration.
func NewHTTPCompletionService(client *internalhttp.HTTPClient) *HTTPCompletionService {
	if client == nil {
		client = internalhttp.NewHTTPClient(internalhttp.HTTPClientConfig{
			Headers: internalhttp.CommonHTTPHeaders(),
		})
	}
	return &HTTPCompletionService{client: client}
}

// NewHTTPCompletionServiceWithTimeout creates a completion service whose
// transport-level timeout matches the caller's per-attempt timeout.
// Without this the client-level backstop would cut off attempts that the
// caller's deadline still allows.
func NewHTTPCompletionServiceWithTimeout(timeout time.Duration) *HTTPCompletionService {
	return NewHTTPCompletionService(internalhttp.NewHTTPClient(internalhttp.HTTPClientConfig{
		Timeout: timeout,
		Headers: internalhttp.CommonHTTPHeaders(),
	}))
}

// Client returns the underlying HTTP client
func (s *HTTPCompletionService) Client() *internalhttp.HTTPClient {
	return s.client
}

// Complete POSTs a single-prompt completion request to the provider's
// endpoint and passes the response body through opaquely. The caller's
// context carries the per-attempt deadline.
func (s *HTTPCompletionService) Complete(ctx context.Context, p *types.Provider, prompt string) (json.RawMessage, error) {
	if p.RateLimit != nil {
		if err := p.RateLimit.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	token, err := bearerToken(p)
	if err != nil {
		return nil, fmt.Errorf("resolving credential: %w", err)
	}

	ep := endpointFor(p)
	if ep.URL == "" {
		return nil, fmt.Errorf("provider %s has no endpoint configured", p.Type)
	}

	body, resp, err := s.client.PostJSON(ctx, ep.URL, buildPayload(p, prompt), internalhttp.AuthHeaders(ep.AuthScheme, token))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			Provider:   p.Type,
			StatusCode: resp.StatusCode,
			Body:       json.RawMessage(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return json.RawMessage(body), nil
}

// buildPayload assembles the outbound request body: the explicit fields
// first, then the provider's extra parameters added alongside. Extras
// never override the explicit fields.
func buildPayload(p *types.Provider, prompt string) map[string]interface{} {
	payload := map[string]interface{}{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	for k, v := range p.ExtraParams {
		if _, taken := payload[k]; !taken {
			payload[k] = v
		}
	}
	return payload
}

// parseRetryAfter handles the delay-seconds form of the Retry-After
// header. The HTTP-date form is rare on completion APIs and is ignored.
func parseRetryAfter(value string) int {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}

// bearerToken resolves the provider's credential. A TokenSource takes
// precedence so OAuth deployments pick up refreshed tokens per request.
func bearerToken(p *types.Provider) (string, error) {
	if p.TokenSource != nil {
		tok, err := p.TokenSource.Token()
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}
	return p.APIKey, nil
}
