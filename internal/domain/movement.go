package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind classifies a movement by the sign of its amount.
type MovementKind string

const (
	MovementDeposit    MovementKind = "deposit"
	MovementWithdrawal MovementKind = "withdrawal"
)

// Movement is one signed ledger entry. Deposits are positive, withdrawals negative.
// Position is the zero-based index the movement was appended at.
type Movement struct {
	ID       string
	Position int
	Amount   decimal.Decimal
	At       time.Time
}

// Kind returns deposit for positive amounts and withdrawal otherwise.
func (m Movement) Kind() MovementKind {
	if m.Amount.IsPositive() {
		return MovementDeposit
	}
	return MovementWithdrawal
}

// DaysSince returns the whole days between at and now, regardless of order.
func DaysSince(at, now time.Time) int {
	d := now.Sub(at)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
