// Package api exposes the support agent over HTTP: JSON endpoints for
// authentication, chat, card blocking, and session reset, with cookie
// session binding and a recovery/request-id/logging/rate-limit
// middleware stack.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ugorjiizu/globus-assessment/internal/chat"
	"github.com/ugorjiizu/globus-assessment/internal/session"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger       *slog.Logger
	Pipeline     *chat.Pipeline // Required
	SessionStore *session.Store // Required
	IsDev        bool           // Enables HTTP cookies (no Secure flag)
	TrustProxy   bool           // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst    int            // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates an API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}
	if cfg.SessionStore == nil {
		return nil, errors.New("session store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sm := &sessionManager{
		store:  cfg.SessionStore,
		isDev:  cfg.IsDev,
		logger: logger,
	}

	ch := &chatHandler{
		pipeline: cfg.Pipeline,
		sessions: sm,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/authenticate", ch.authenticate)
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("POST /api/v1/block-card", ch.blockCard)
	mux.HandleFunc("POST /api/v1/reset", ch.reset)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID sits before Logging so request_id is available in log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux keeps health probes out of the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
