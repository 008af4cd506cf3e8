package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer records a completed movement of money between two accounts.
type Transfer struct {
	ID           string
	FromUsername string
	ToUsername   string
	Amount       decimal.Decimal
	Debit        Movement
	Credit       Movement
	CreatedAt    time.Time
}

// LoanStatus is the lifecycle state of a loan request.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusDiscarded LoanStatus = "discarded"
)

// Loan is a loan request waiting for, or past, its review delay.
type Loan struct {
	ID          string
	Username    string
	SessionID   string
	Amount      decimal.Decimal
	Status      LoanStatus
	RequestedAt time.Time
	ReviewAt    time.Time
}
