// Package llm provides the generation service boundary: a Generator
// interface the pipeline depends on, and a genkit-backed implementation
// running against a local Ollama server.
//
// The production generator serializes inference: one in-flight generation
// at a time, concurrent callers block. Non-determinism is isolated behind
// this single boundary so every other component stays pure and testable.
package llm

import (
	"context"
	"errors"
)

// Message roles in a generation request.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single prior conversation turn.
type Message struct {
	Role string
	Text string
}

// Request describes one generation call.
type Request struct {
	System      string    // system instruction; never truncated
	History     []Message // prior turns, oldest first
	Message     string    // current user message; never truncated
	MaxTokens   int
	Temperature float32
	Stop        []string // stop sequences, optional
}

// Generator produces a free-text completion for a request.
//
// Implementations must be safe for concurrent use; the production
// implementation serializes calls internally.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrUnavailable indicates the generation service failed for this turn:
// retries exhausted, circuit open, or the runtime is unreachable.
// The pipeline surfaces this as a generic apology without touching history.
var ErrUnavailable = errors.New("generation service unavailable")
