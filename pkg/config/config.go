// Package config parses the YAML configuration format for llm-fallback
// clients: an ordered provider list plus the fallback options. API keys
// may be given inline or indirected through environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/cecil-the-coder/llm-fallback/pkg/fallback"
	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// File represents the complete configuration structure
type File struct {
	Providers []ProviderEntry `yaml:"providers"`
	Options   *OptionsEntry   `yaml:"options,omitempty"`
}

// ProviderEntry represents a single provider's configuration
type ProviderEntry struct {
	// Provider type (e.g. "openai", "anthropic", "gemini")
	Type string `yaml:"type"`

	// Model to request from this provider
	Model string `yaml:"model"`

	// Scheduling priority; lower is tried earlier
	Priority int `yaml:"priority"`

	// Single API key (prefer api_key_env in committed configs)
	APIKey string `yaml:"api_key,omitempty"`

	// Environment variable holding the API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// Base URL override for self-hosted or API-compatible deployments
	BaseURL string `yaml:"base_url,omitempty"`

	// Requests per minute for the optional client-side rate limiter
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`

	// Extra parameters forwarded verbatim into the request body
	ExtraParams map[string]interface{} `yaml:"extra_params,omitempty"`
}

// OptionsEntry mirrors fallback.Options with durations in milliseconds,
// matching the wire-format convention of the completion APIs themselves.
type OptionsEntry struct {
	EnablePriorityUpdates    *bool `yaml:"enable_priority_updates,omitempty"`
	TimeoutMS                int   `yaml:"timeout_ms,omitempty"`
	RetryableCodes           []int `yaml:"retryable_codes,omitempty"`
	RetryableErrorTimeoutMS  int   `yaml:"retryable_error_timeout_ms,omitempty"`
	NonRetryableErrTimeoutMS int   `yaml:"non_retryable_error_timeout_ms,omitempty"`
	EnableVerboseLogging     bool  `yaml:"enable_verbose_logging,omitempty"`
}

// Load reads and parses a configuration file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(f.Providers) == 0 {
		return nil, types.ErrNoProviders
	}
	return &f, nil
}

// Build converts the parsed file into provider records and options ready
// for fallback.New.
func (f *File) Build() ([]*types.Provider, *fallback.Options, error) {
	provs := make([]*types.Provider, 0, len(f.Providers))
	for i, entry := range f.Providers {
		p, err := entry.build()
		if err != nil {
			return nil, nil, fmt.Errorf("provider %d (%s): %w", i, entry.Type, err)
		}
		provs = append(provs, p)
	}

	opts := &fallback.Options{}
	if f.Options != nil {
		opts = &fallback.Options{
			EnablePriorityUpdates:    f.Options.EnablePriorityUpdates,
			Timeout:                  time.Duration(f.Options.TimeoutMS) * time.Millisecond,
			RetryableCodes:           f.Options.RetryableCodes,
			RetryableErrorTimeout:    time.Duration(f.Options.RetryableErrorTimeoutMS) * time.Millisecond,
			NonRetryableErrorTimeout: time.Duration(f.Options.NonRetryableErrTimeoutMS) * time.Millisecond,
			EnableVerboseLogging:     f.Options.EnableVerboseLogging,
		}
	}
	return provs, opts, nil
}

func (e ProviderEntry) build() (*types.Provider, error) {
	apiKey := e.APIKey
	if apiKey == "" && e.APIKeyEnv != "" {
		apiKey = os.Getenv(e.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("environment variable %s is not set", e.APIKeyEnv)
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api_key or api_key_env is required")
	}
	if e.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	p := &types.Provider{
		Type:        types.ProviderType(e.Type),
		APIKey:      apiKey,
		Model:       e.Model,
		Priority:    e.Priority,
		BaseURL:     e.BaseURL,
		ExtraParams: e.ExtraParams,
	}
	if e.RequestsPerMinute > 0 {
		p.RateLimit = rate.NewLimiter(rate.Every(time.Minute/time.Duration(e.RequestsPerMinute)), e.RequestsPerMinute)
	}
	return p, nil
}
