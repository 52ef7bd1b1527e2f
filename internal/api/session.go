package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ugorjiizu/globus-assessment/internal/session"
)

const sessionCookieName = "sid"

// sessionManager binds HTTP requests to conversation sessions via an
// opaque cookie.
type sessionManager struct {
	store  *session.Store
	isDev  bool
	logger *slog.Logger
}

// fromRequest resolves the session referenced by the request cookie.
// Returns nil when the cookie is absent, malformed, or stale.
func (sm *sessionManager) fromRequest(r *http.Request) *session.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil
	}
	return sm.store.Get(id)
}

// ensure returns the request's session, creating one and setting the
// cookie when none exists yet.
func (sm *sessionManager) ensure(w http.ResponseWriter, r *http.Request) *session.Session {
	if sess := sm.fromRequest(r); sess != nil {
		return sess
	}

	sess := sm.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   !sm.isDev,
		SameSite: http.SameSiteStrictMode,
	})
	sm.logger.Debug("session created", "session", sess.ID)
	return sess
}
