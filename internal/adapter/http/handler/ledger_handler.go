package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/usecase"
)

// LedgerService defines the ledger checks used by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide reports.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Consistency returns the consistency report. An inconsistent ledger is
// reported with status 500 and the full report as body.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	switch {
	case errors.Is(err, usecase.ErrInconsistentLedger):
		writeJSON(w, http.StatusInternalServerError, dto.ConsistencyFromReport(report))
	case err != nil:
		writeDomainError(w, err)
	default:
		writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
	}
}
