// Package testutil provides shared testing utilities and mocks for the
// llm-fallback test suite.
package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// Outcome scripts one attempt result for a provider in a MockCompletionService
type Outcome struct {
	// Response is returned when Err is nil
	Response json.RawMessage

	// Err is the attempt error, typically a *providers.StatusError
	Err error
}

// MockCompletionService is a scripted CompletionService. Each provider
// type is given a queue of outcomes consumed in order; once a queue is
// drained, its last outcome repeats. Attempts are recorded for
// assertions.
type MockCompletionService struct {
	mu       sync.Mutex
	outcomes map[types.ProviderType][]Outcome
	consumed map[types.ProviderType]int

	// Attempts records every provider attempted, in order
	Attempts []types.ProviderType

	// Prompts records the prompt of every attempt, in order
	Prompts []string
}

// NewMockCompletionService creates an empty mock; script it with Script
func NewMockCompletionService() *MockCompletionService {
	return &MockCompletionService{
		outcomes: make(map[types.ProviderType][]Outcome),
		consumed: make(map[types.ProviderType]int),
	}
}

// Script queues outcomes for a provider type, returned in order on
// successive attempts
func (m *MockCompletionService) Script(provider types.ProviderType, outcomes ...Outcome) *MockCompletionService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[provider] = append(m.outcomes[provider], outcomes...)
	return m
}

// Complete implements providers.CompletionService
func (m *MockCompletionService) Complete(ctx context.Context, p *types.Provider, prompt string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attempts = append(m.Attempts, p.Type)
	m.Prompts = append(m.Prompts, prompt)

	queue := m.outcomes[p.Type]
	if len(queue) == 0 {
		return json.RawMessage(`{"choices":[{"message":{"content":"ok"}}]}`), nil
	}

	idx := m.consumed[p.Type]
	if idx >= len(queue) {
		idx = len(queue) - 1
	} else {
		m.consumed[p.Type]++
	}

	outcome := queue[idx]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	return outcome.Response, nil
}

// AttemptCount returns the total number of attempts recorded
func (m *MockCompletionService) AttemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Attempts)
}
