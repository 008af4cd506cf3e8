package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/usecase"
)

// LoginRequest represents a request to start a session.
type LoginRequest struct {
	Username string `json:"username"`
	Pin      int    `json:"pin"`
}

// TransferRequest represents a request to send money to another account.
type TransferRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		ToUsername: strings.TrimSpace(r.To),
		Amount:     r.Amount,
	}
}

// LoanRequest represents a loan request.
type LoanRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CloseAccountRequest confirms the credentials of the account being closed.
type CloseAccountRequest struct {
	Username string `json:"username"`
	Pin      int    `json:"pin"`
}
