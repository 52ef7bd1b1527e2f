// Package testutil provides deterministic test doubles for the model and
// embedding boundaries, so every test runs offline.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ugorjiizu/globus-assessment/internal/llm"
)

// MockGenerator provides deterministic completions for testing.
// It matches the current user message against registered patterns and
// returns the corresponding response.
//
// Thread-safe for concurrent use.
type MockGenerator struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	err      error
	calls    []llm.Request
}

type mockRule struct {
	pattern  string // substring match in user message, lowercase
	response string
}

// NewMockGenerator creates a mock with the given fallback response.
// The fallback is returned when no pattern matches.
func NewMockGenerator(fallback string) *MockGenerator {
	return &MockGenerator{fallback: fallback}
}

// AddResponse registers a pattern-response pair.
// When the current message contains the pattern (case-insensitive), the
// response is returned. First registered match wins.
func (m *MockGenerator) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// FailWith makes every subsequent Generate call return err.
// Pass nil to restore normal operation.
func (m *MockGenerator) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Generate implements llm.Generator.
func (m *MockGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.err != nil {
		return "", m.err
	}

	lower := strings.ToLower(req.Message)
	for _, r := range m.rules {
		if strings.Contains(lower, r.pattern) {
			return r.response, nil
		}
	}
	return m.fallback, nil
}

// Calls returns a copy of all recorded requests.
func (m *MockGenerator) Calls() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]llm.Request, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// CallCount returns the number of Generate invocations.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent request, or a zero Request when none.
func (m *MockGenerator) LastCall() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return llm.Request{}
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears all recorded calls (keeps registered responses).
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
