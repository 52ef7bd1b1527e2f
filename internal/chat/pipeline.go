// Package chat orchestrates a support turn: classify the message, gate
// retrieval, check access, compose the prompt, generate the reply, and
// update session state.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ugorjiizu/globus-assessment/internal/directory"
	"github.com/ugorjiizu/globus-assessment/internal/intent"
	"github.com/ugorjiizu/globus-assessment/internal/knowledge"
	"github.com/ugorjiizu/globus-assessment/internal/llm"
	"github.com/ugorjiizu/globus-assessment/internal/policy"
	"github.com/ugorjiizu/globus-assessment/internal/session"
)

// ErrNoSession indicates the transport passed no established session.
var ErrNoSession = errors.New("no active session")

// Retriever searches the knowledge index.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Result, error)
}

// Classifier assigns an intent to a message.
type Classifier interface {
	Classify(ctx context.Context, message string, history []llm.Message) intent.Intent
}

// Config carries the generation knobs the pipeline needs per turn.
type Config struct {
	MaxTokens   int
	Temperature float32
	TopK        int
}

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// ChatResult is the reply for one turn.
type ChatResult struct {
	Reply  string        `json:"reply"`
	Intent intent.Intent `json:"intent"`
}

// ResetResult confirms a session reset.
type ResetResult struct {
	Message string `json:"message"`
}

// BlockResult is the outcome of a card-block request.
type BlockResult struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message"`
}

// Pipeline is the turn orchestrator. Safe for concurrent use across
// sessions; turns on one session are serialized by its turn lock.
type Pipeline struct {
	classifier Classifier
	retriever  Retriever
	gen        llm.Generator
	dir        *directory.Directory
	composer   *Composer
	cfg        Config
	logger     *slog.Logger
}

// New wires a pipeline from its collaborators.
func New(classifier Classifier, retriever Retriever, gen llm.Generator, dir *directory.Directory, composer *Composer, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		classifier: classifier,
		retriever:  retriever,
		gen:        gen,
		dir:        dir,
		composer:   composer,
		cfg:        cfg,
		logger:     logger,
	}
}

// HandleAuthenticate looks up the account number and, on success, binds
// the session to the customer with a fresh history. A failed lookup
// leaves the session untouched.
func (p *Pipeline) HandleAuthenticate(ctx context.Context, sess *session.Session, accountNo string) (AuthResult, error) {
	if sess == nil {
		return AuthResult{}, ErrNoSession
	}
	sess.LockTurn()
	defer sess.UnlockTurn()

	cust, err := p.dir.Lookup(accountNo)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			p.logger.Info("authentication failed", "session", sess.ID)
			return AuthResult{Success: false, Message: msgAccountNotFound}, nil
		}
		return AuthResult{}, fmt.Errorf("looking up account: %w", err)
	}

	sess.Reset()
	sess.Authenticate(cust)
	p.logger.Info("session authenticated", "session", sess.ID)
	return AuthResult{Success: true, Name: cust.Name, Message: welcomeMessage(cust.Name)}, nil
}

// HandleChat runs the full pipeline for one message. The session turn
// lock is held end to end so concurrent messages on one session are
// answered and appended to history in arrival order.
func (p *Pipeline) HandleChat(ctx context.Context, sess *session.Session, message string) (ChatResult, error) {
	if sess == nil {
		return ChatResult{}, ErrNoSession
	}
	sess.LockTurn()
	defer sess.UnlockTurn()

	message = strings.TrimSpace(message)
	if message == "" {
		return ChatResult{Reply: msgEmptyMessage, Intent: intent.GeneralInquiry}, nil
	}

	history := sess.History()
	in := p.classifier.Classify(ctx, message, history)

	if policy.Authorize(in, sess.Authenticated()) == policy.Deny {
		refusal := refusalFor(in)
		sess.AppendTurn(message, refusal)
		p.logger.Info("turn denied", "session", sess.ID, "intent", in)
		return ChatResult{Reply: refusal, Intent: in}, nil
	}

	var results []knowledge.Result
	if policy.ShouldRetrieve(in) {
		var err error
		results, err = p.retriever.Search(ctx, message, p.cfg.TopK)
		if err != nil {
			// Degraded but answerable: proceed without product context.
			p.logger.Warn("retrieval failed", "session", sess.ID, "error", err)
			results = nil
		}
	}

	system, window := p.composer.Compose(in, sess.Customer(), results, history, message)
	reply, err := p.gen.Generate(ctx, llm.Request{
		System:      system,
		History:     window,
		Message:     message,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		p.logger.Error("generation failed", "session", sess.ID, "intent", in, "error", err)
		return ChatResult{Reply: msgGenerationFailed, Intent: in}, nil
	}

	sess.AppendTurn(message, reply)
	return ChatResult{Reply: reply, Intent: in}, nil
}

// HandleReset clears the session back to the anonymous state.
func (p *Pipeline) HandleReset(sess *session.Session) (ResetResult, error) {
	if sess == nil {
		return ResetResult{}, ErrNoSession
	}
	sess.LockTurn()
	defer sess.UnlockTurn()

	sess.Reset()
	return ResetResult{Message: msgSessionReset}, nil
}

// HandleBlockCard blocks the matching card on the session customer's
// profile and refreshes the session snapshot so later turns see the new
// status.
func (p *Pipeline) HandleBlockCard(ctx context.Context, sess *session.Session, issuer, cardType string) (BlockResult, error) {
	if sess == nil {
		return BlockResult{}, ErrNoSession
	}
	sess.LockTurn()
	defer sess.UnlockTurn()

	if !sess.Authenticated() {
		return BlockResult{Success: false, Message: msgCardBlockRestricted}, nil
	}

	cust := sess.Customer()
	card, ok := findCard(cust, issuer, cardType)
	if !ok {
		return BlockResult{Success: false, Message: msgCardNotFound}, nil
	}

	if err := p.dir.BlockCard(card.AccountNumber, issuer, cardType); err != nil {
		switch {
		case errors.Is(err, directory.ErrCardAlreadyBlocked):
			return BlockResult{Success: false, Message: msgCardAlreadyBlocked}, nil
		case errors.Is(err, directory.ErrCardNotFound), errors.Is(err, directory.ErrNotFound):
			return BlockResult{Success: false, Message: msgCardNotFound}, nil
		}
		return BlockResult{}, fmt.Errorf("blocking card: %w", err)
	}

	if fresh, err := p.dir.Lookup(card.AccountNumber); err == nil {
		sess.Authenticate(fresh)
	}

	ref := blockReference()
	p.logger.Info("card blocked", "session", sess.ID, "reference", ref)
	return BlockResult{
		Success:   true,
		Reference: ref,
		Message:   cardBlockedMessage(card.Issuer, card.Type, ref),
	}, nil
}

func refusalFor(in intent.Intent) string {
	if in == intent.CardBlockRequest {
		return msgCardBlockRestricted
	}
	return msgAccountRestricted
}

func findCard(cust *directory.Customer, issuer, cardType string) (directory.Card, bool) {
	for _, card := range cust.Cards {
		if strings.EqualFold(card.Issuer, issuer) && strings.EqualFold(card.Type, cardType) {
			return card, true
		}
	}
	return directory.Card{}, false
}

// blockReference generates a customer-facing reference like BLK-3F92A1C4.
func blockReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "BLK-" + id[:8]
}
