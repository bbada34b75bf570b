// Package http provides the HTTP transport used for outbound completion
// requests. It is a thin JSON client with connection pooling, default
// headers and lightweight metrics. It deliberately performs no retries:
// resilience is the fallback orchestrator's job, and a provider is
// attempted at most once per call.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient is a reusable JSON HTTP client for completion endpoints
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	requestCount int64
	successCount int64
	errorCount   int64
	totalLatency int64 // Nanoseconds
	mu           sync.RWMutex
	lastRequest  time.Time
}

// HTTPClientConfig configures the HTTP client
type HTTPClientConfig struct {
	Timeout             time.Duration       `json:"timeout,omitempty"`
	Headers             map[string]string   `json:"headers,omitempty"`
	UserAgent           string              `json:"user_agent,omitempty"`
	RequestInterceptor  RequestInterceptor  `json:"-"`
	ResponseInterceptor ResponseInterceptor `json:"-"`
	// Transport configuration
	MaxIdleConns          int           `json:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost   int           `json:"max_idle_conns_per_host,omitempty"`
	MaxConnsPerHost       int           `json:"max_conns_per_host,omitempty"`
	IdleConnTimeout       time.Duration `json:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout   time.Duration `json:"tls_handshake_timeout,omitempty"`
	ExpectContinueTimeout time.Duration `json:"expect_continue_timeout,omitempty"`
}

// ClientMetrics tracks HTTP client performance
type ClientMetrics struct {
	TotalRequests   int64         `json:"total_requests"`
	SuccessfulReqs  int64         `json:"successful_requests"`
	FailedReqs      int64         `json:"failed_requests"`
	AvgLatency      time.Duration `json:"avg_latency"`
	LastRequestTime time.Time     `json:"last_request_time"`
}

// RequestInterceptor allows modifying requests before sending
type RequestInterceptor interface {
	Intercept(req *http.Request) error
}

// ResponseInterceptor allows processing responses after receiving
type ResponseInterceptor interface {
	Intercept(resp *http.Response) error
}

// NewHTTPClient creates a new HTTP client with common configurations
func NewHTTPClient(config HTTPClientConfig) *HTTPClient {
	// Set defaults
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	// Set transport defaults
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}
	if config.TLSHandshakeTimeout == 0 {
		config.TLSHandshakeTimeout = 10 * time.Second
	}
	if config.ExpectContinueTimeout == 0 {
		config.ExpectContinueTimeout = 1 * time.Second
	}

	transport := createTransport(config)

	client := &HTTPClient{
		client: &http.Client{
			// Per-request deadlines come from the caller's context; the
			// client-level timeout is a backstop only.
			Timeout:   config.Timeout,
			Transport: transport,
		},
		config: config,
	}

	// Set default headers
	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}
	if config.UserAgent != "" {
		config.Headers["User-Agent"] = config.UserAgent
	} else {
		config.Headers["User-Agent"] = "llm-fallback/1.0"
	}
	client.config.Headers = config.Headers

	return client
}

// createTransport creates an http.Transport with the specified configuration
func createTransport(config HTTPClientConfig) *http.Transport {
	return &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
		Proxy:                 http.ProxyFromEnvironment,
	}
}

// Do executes a single HTTP request with metrics. The request is sent
// exactly once; status-code handling is the caller's responsibility.
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	atomic.AddInt64(&c.requestCount, 1)

	if c.config.RequestInterceptor != nil {
		if err := c.config.RequestInterceptor.Intercept(req); err != nil {
			return nil, fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	// Set default headers without clobbering request-specific ones
	for key, value := range c.config.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	resp, err := c.client.Do(req.WithContext(ctx))

	if err == nil && c.config.ResponseInterceptor != nil {
		if interceptErr := c.config.ResponseInterceptor.Intercept(resp); interceptErr != nil {
			_ = resp.Body.Close() //nolint:errcheck // Best effort close
			return nil, fmt.Errorf("response interceptor failed: %w", interceptErr)
		}
	}

	c.updateMetrics(err, time.Since(startTime))
	return resp, err
}

// DoWithFullResponse executes the request and returns the response body
func (c *HTTPClient) DoWithFullResponse(ctx context.Context, req *http.Request) ([]byte, *http.Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Best effort close

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp, nil
}

// PostJSON sends a JSON POST request
func (c *HTTPClient) PostJSON(ctx context.Context, url string, body interface{}, headers map[string]string) ([]byte, *http.Response, error) {
	req, err := NewRequestBuilder(http.MethodPost, url).
		WithContext(ctx).
		WithJSONBody(body).
		WithHeaders(headers).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create JSON request: %w", err)
	}
	return c.DoWithFullResponse(ctx, req)
}

// updateMetrics updates client metrics after a request
func (c *HTTPClient) updateMetrics(err error, latency time.Duration) {
	c.mu.Lock()
	c.lastRequest = time.Now()
	c.mu.Unlock()

	if err != nil {
		atomic.AddInt64(&c.errorCount, 1)
	} else {
		atomic.AddInt64(&c.successCount, 1)
	}
	atomic.AddInt64(&c.totalLatency, latency.Nanoseconds())
}

// GetMetrics returns current client metrics
func (c *HTTPClient) GetMetrics() ClientMetrics {
	c.mu.RLock()
	lastRequest := c.lastRequest
	c.mu.RUnlock()

	metrics := ClientMetrics{
		TotalRequests:   atomic.LoadInt64(&c.requestCount),
		SuccessfulReqs:  atomic.LoadInt64(&c.successCount),
		FailedReqs:      atomic.LoadInt64(&c.errorCount),
		LastRequestTime: lastRequest,
	}
	if metrics.TotalRequests > 0 {
		metrics.AvgLatency = time.Duration(atomic.LoadInt64(&c.totalLatency) / metrics.TotalRequests)
	}
	return metrics
}

// ResetMetrics resets all metrics
func (c *HTTPClient) ResetMetrics() {
	atomic.StoreInt64(&c.requestCount, 0)
	atomic.StoreInt64(&c.successCount, 0)
	atomic.StoreInt64(&c.errorCount, 0)
	atomic.StoreInt64(&c.totalLatency, 0)
}

// Client returns the underlying http.Client
func (c *HTTPClient) Client() *http.Client {
	return c.client
}
