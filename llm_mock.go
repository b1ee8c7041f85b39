package aiquiz

import (
	"context"
	"sync"
)

// MockCompletion is a canned response for the MockProvider.
type MockCompletion struct {
	Text string
	Err  error
}

// MockProvider is a deterministic Provider for tests and offline runs. It
// returns canned completions in FIFO order and records every call.
type MockProvider struct {
	mu           sync.Mutex
	key          string
	responses    []MockCompletion
	Prompts      []string
	Temperatures []float32
}

// NewMockProvider creates a MockProvider bound to key with the given canned
// completions.
func NewMockProvider(key string, responses ...MockCompletion) *MockProvider {
	return &MockProvider{key: key, responses: responses}
}

// Complete returns the next canned completion, recording the call. An empty
// queue yields a non-quota ProviderError.
func (m *MockProvider) Complete(_ context.Context, prompt string, temperature float32) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.Temperatures = append(m.Temperatures, temperature)

	if len(m.responses) == 0 {
		return "", &ProviderError{Message: "mock: no responses queued"}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

// Key returns the credential this mock is bound to.
func (m *MockProvider) Key() string {
	return m.key
}

// Enqueue appends a canned completion.
func (m *MockProvider) Enqueue(resp MockCompletion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Complete calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
