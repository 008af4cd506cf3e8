package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/domain"
)

// AccountService defines the account operations used by AccountHandler.
type AccountService interface {
	ListMovements(ctx context.Context, sortAscending bool) ([]domain.Movement, error)
	Summary(ctx context.Context) (*domain.Account, domain.Summary, error)
	CloseAccount(ctx context.Context, username string, pin int) error
}

// AccountHandler handles the logged-in account's views and closure.
type AccountHandler struct {
	accountUC AccountService
	now       func() time.Time
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, now: time.Now}
}

// Movements lists the movements in insertion order, or ascending by amount
// with ?sort=asc.
func (h *AccountHandler) Movements(w http.ResponseWriter, r *http.Request) {
	var sorted bool
	switch r.URL.Query().Get("sort") {
	case "":
	case "asc":
		sorted = true
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "sort must be asc or omitted")
		return
	}

	movements, err := h.accountUC.ListMovements(r.Context(), sorted)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements, sorted, h.now()))
}

// Summary returns balance, income, expense and interest.
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	account, summary, err := h.accountUC.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(account, summary))
}

// Close closes the logged-in account after confirming its credentials.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req dto.CloseAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.accountUC.CloseAccount(r.Context(), strings.TrimSpace(req.Username), req.Pin); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
