package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RequestBuilder helps build HTTP requests with common patterns
type RequestBuilder struct {
	method  string
	url     string
	headers map[string]string
	body    interface{}
	ctx     context.Context
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder(method, url string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		url:     url,
		headers: make(map[string]string),
		ctx:     context.Background(),
	}
}

// WithContext sets the request context
func (rb *RequestBuilder) WithContext(ctx context.Context) *RequestBuilder {
	rb.ctx = ctx
	return rb
}

// WithHeaders adds headers to the request
func (rb *RequestBuilder) WithHeaders(headers map[string]string) *RequestBuilder {
	for k, v := range headers {
		rb.headers[k] = v
	}
	return rb
}

// WithHeader adds a single header
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithJSONBody sets a JSON body
func (rb *RequestBuilder) WithJSONBody(body interface{}) *RequestBuilder {
	rb.body = body
	rb.headers["Content-Type"] = "application/json"
	return rb
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() (*http.Request, error) {
	var bodyReader io.Reader

	if rb.body != nil {
		jsonBody, err := json.Marshal(rb.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(rb.ctx, rb.method, rb.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range rb.headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// CommonHTTPHeaders returns commonly used HTTP headers for completion APIs
func CommonHTTPHeaders() map[string]string {
	return map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
		"User-Agent":   "llm-fallback/1.0",
	}
}

// AuthHeaders creates authentication headers for the given scheme
func AuthHeaders(scheme, token string) map[string]string {
	switch scheme {
	case "bearer":
		return map[string]string{
			"Authorization": "Bearer " + token,
		}
	case "anthropic":
		return map[string]string{
			"x-api-key":         token,
			"anthropic-version": "2023-06-01",
		}
	default:
		return map[string]string{
			"Authorization": token,
		}
	}
}
