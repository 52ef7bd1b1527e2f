// Package session holds per-conversation state: identity, authentication,
// and the bounded message history fed back into prompts.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ugorjiizu/globus-assessment/internal/directory"
	"github.com/ugorjiizu/globus-assessment/internal/llm"
)

// Session is one conversation. All methods are safe for concurrent use.
// The state mutex protects individual reads and writes; callers that
// span several of them across one turn serialize with LockTurn, so
// concurrent requests on the same session are processed and recorded
// in the order the turn lock is acquired.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	turnMu sync.Mutex

	mu            sync.Mutex
	authenticated bool
	customer      *directory.Customer
	history       []llm.Message
	maxTurns      int
}

// New creates an anonymous session. maxTurns bounds the history window:
// at most 2*maxTurns messages (a turn is one user message plus one
// assistant reply) are retained, oldest evicted first.
func New(maxTurns int) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		maxTurns:  maxTurns,
	}
}

// LockTurn acquires the session's turn lock. It is held for the whole
// of a multi-step turn, generation included, never just one accessor.
func (s *Session) LockTurn() {
	s.turnMu.Lock()
}

// UnlockTurn releases the turn lock.
func (s *Session) UnlockTurn() {
	s.turnMu.Unlock()
}

// Authenticate binds the session to a customer record.
func (s *Session) Authenticate(c *directory.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.customer = c
}

// Reset returns the session to the anonymous state and clears history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.customer = nil
	s.history = nil
}

// Authenticated reports whether the session is bound to a customer.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Customer returns the bound customer record, or nil when anonymous.
func (s *Session) Customer() *directory.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// AppendTurn records a completed exchange. Turns are only recorded after
// a successful reply so a failed generation never pollutes later prompts.
func (s *Session) AppendTurn(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Text: userText},
		llm.Message{Role: llm.RoleAssistant, Text: assistantText},
	)
	if max := 2 * s.maxTurns; len(s.history) > max {
		s.history = append([]llm.Message(nil), s.history[len(s.history)-max:]...)
	}
}

// History returns a copy of the retained messages, oldest first.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]llm.Message, len(s.history))
	copy(cp, s.history)
	return cp
}

// Store is an in-memory session registry keyed by session ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	maxTurns int
}

// NewStore creates an empty store whose sessions keep maxTurns turns.
func NewStore(maxTurns int) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		maxTurns: maxTurns,
	}
}

// Create registers and returns a fresh anonymous session.
func (st *Store) Create() *Session {
	s := New(st.maxTurns)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given ID, or nil when unknown.
func (st *Store) Get(id uuid.UUID) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete removes the session with the given ID.
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
