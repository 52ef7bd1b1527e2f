package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ugorjiizu/globus-assessment/internal/chat"
)

// chatHandler serves the conversation endpoints.
type chatHandler struct {
	pipeline *chat.Pipeline
	sessions *sessionManager
	logger   *slog.Logger
}

type authenticateRequest struct {
	AccountNumber string `json:"account_number"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type blockCardRequest struct {
	Issuer   string `json:"issuer"`
	CardType string `json:"card_type"`
}

// authenticate verifies an account number and binds the session to the
// matching customer. A session is provisioned if the client has none.
func (h *chatHandler) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if req.AccountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing_account_number", "account_number is required", h.logger)
		return
	}

	sess := h.sessions.ensure(w, r)
	res, err := h.pipeline.HandleAuthenticate(r.Context(), sess, req.AccountNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "authentication failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// send runs the message pipeline for one chat turn. The session is
// established by authenticate; chatting without one is a 403.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	sess := h.sessions.fromRequest(r)
	if sess == nil {
		writeError(w, http.StatusForbidden, "no_session", "no active session", h.logger)
		return
	}
	res, err := h.pipeline.HandleChat(r.Context(), sess, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrNoSession) {
			writeError(w, http.StatusForbidden, "no_session", "no active session", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "chat failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// reset clears the session back to the anonymous state. It never
// provisions a session: resetting nothing is a 403.
func (h *chatHandler) reset(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.fromRequest(r)
	if sess == nil {
		writeError(w, http.StatusForbidden, "no_session", "no active session", h.logger)
		return
	}

	res, err := h.pipeline.HandleReset(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "reset failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// blockCard executes a card block on the authenticated session.
func (h *chatHandler) blockCard(w http.ResponseWriter, r *http.Request) {
	var req blockCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if req.Issuer == "" || req.CardType == "" {
		writeError(w, http.StatusBadRequest, "missing_card_details", "issuer and card_type are required", h.logger)
		return
	}

	sess := h.sessions.fromRequest(r)
	if sess == nil {
		writeError(w, http.StatusForbidden, "no_session", "no active session", h.logger)
		return
	}

	res, err := h.pipeline.HandleBlockCard(r.Context(), sess, req.Issuer, req.CardType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "card block failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// health reports liveness. Bypasses the middleware stack.
func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
