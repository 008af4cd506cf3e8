package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/usecase"
)

// SessionService defines the session operations used by SessionHandler.
type SessionService interface {
	Login(ctx context.Context, username string, pin int) (*usecase.SessionInfo, error)
	Logout()
	Info() usecase.SessionInfo
}

// TokenIssuer issues a bearer token for a login session.
type TokenIssuer interface {
	Generate(username, sessionID string) (string, error)
}

// SessionHandler handles login, logout and session state.
type SessionHandler struct {
	sessions SessionService
	tokens   TokenIssuer
}

// NewSessionHandler creates a new SessionHandler. tokens may be nil, in
// which case logins return no token.
func NewSessionHandler(sessions SessionService, tokens TokenIssuer) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens}
}

// Login authenticates a username and pin.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	info, err := h.sessions.Login(r.Context(), strings.TrimSpace(req.Username), req.Pin)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := dto.SessionFromInfo(*info)
	if h.tokens != nil {
		token, err := h.tokens.Generate(info.Account.Username, info.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp.Token = token
	}

	writeJSON(w, http.StatusOK, resp)
}

// State returns the current session state.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SessionFromInfo(h.sessions.Info()))
}

// Logout ends the session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}
