// Package intent classifies user messages into the fixed set of support
// intents that drive retrieval gating and access control.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ugorjiizu/globus-assessment/internal/llm"
)

// Intent is one of the fixed support categories.
type Intent string

const (
	Greeting           Intent = "greeting"
	GeneralInquiry     Intent = "general_inquiry"
	AccountInformation Intent = "account_information"
	ProductInquiry     Intent = "product_inquiry"
	CardBlockRequest   Intent = "card_block_request"
)

// All lists every valid intent, in prompt order.
var All = []Intent{Greeting, GeneralInquiry, AccountInformation, ProductInquiry, CardBlockRequest}

// Valid reports whether s is a recognized intent label.
func Valid(s string) bool {
	switch Intent(s) {
	case Greeting, GeneralInquiry, AccountInformation, ProductInquiry, CardBlockRequest:
		return true
	}
	return false
}

const classifierSystem = `You are an intent classifier for a bank customer support assistant.
Classify the user's message into exactly one of these categories:

- greeting: salutations, small talk, thanks, goodbyes
- general_inquiry: questions about banking services, branches, procedures, or anything not covered below
- account_information: questions about the user's own balance, transactions, or account details
- product_inquiry: questions about bank products such as accounts, loans, or cards on offer
- card_block_request: the user wants to block, freeze, or deactivate their card

Respond with only the category name, nothing else.`

// Classifier assigns an intent to each incoming message using a
// constrained single-label completion.
type Classifier struct {
	gen         llm.Generator
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// NewClassifier creates a classifier over the given generator.
func NewClassifier(gen llm.Generator, maxTokens int, temperature float32, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, maxTokens: maxTokens, temperature: temperature, logger: logger}
}

// Classify returns the intent for message. It never fails: on model
// error or an unparseable label it falls back to GeneralInquiry, because
// the general path is safe for every message.
//
// Recent history turns give the model context for elliptical follow-ups
// like "and the second one?".
func (c *Classifier) Classify(ctx context.Context, message string, history []llm.Message) Intent {
	req := llm.Request{
		System:      classifierSystem,
		History:     lastTurns(history, 2),
		Message:     fmt.Sprintf("Classify this message: %s", message),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stop:        []string{"\n"},
	}

	raw, err := c.gen.Generate(ctx, req)
	if err != nil {
		c.logger.Warn("intent classification failed, using fallback",
			"error", err, "fallback", GeneralInquiry)
		return GeneralInquiry
	}

	label := parseLabel(raw)
	c.logger.Debug("classified message", "intent", label, "raw", raw)
	return label
}

// parseLabel extracts an intent from model output. Exact match on the
// first token is preferred; otherwise the first known label appearing
// anywhere in the output wins.
func parseLabel(raw string) Intent {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.Trim(norm, `"'.:`)

	if first, _, found := strings.Cut(norm, " "); found {
		if Valid(first) {
			return Intent(first)
		}
	} else if Valid(norm) {
		return Intent(norm)
	}

	for _, in := range All {
		if strings.Contains(norm, string(in)) {
			return in
		}
	}
	return GeneralInquiry
}

// lastTurns returns at most n trailing messages from history.
func lastTurns(history []llm.Message, n int) []llm.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
