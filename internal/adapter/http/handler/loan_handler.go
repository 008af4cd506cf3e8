package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/domain"
)

// LoanService defines the loan operation used by LoanHandler.
type LoanService interface {
	RequestLoan(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error)
}

// LoanHandler handles loan requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Request schedules a loan. The response is 202 because the loan is only
// credited after the review delay.
func (h *LoanHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	loan, err := h.loanUC.RequestLoan(r.Context(), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.LoanFromDomain(loan))
}
