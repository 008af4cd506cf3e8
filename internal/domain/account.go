package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer account with its ledger. Accounts are shared by
// pointer and must not be copied.
type Account struct {
	Owner        string
	Username     string
	PinHash      []byte
	InterestRate decimal.Decimal // percent
	Currency     string
	Locale       string
	CreatedAt    time.Time

	ledger Ledger
}

// Summary holds the derived ledger values shown next to the movements.
type Summary struct {
	Balance       decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	TotalInterest decimal.Decimal
}

// NewAccount creates an account whose username is derived from owner.
func NewAccount(owner string, pinHash []byte, interestRate decimal.Decimal, currency, locale string) *Account {
	return &Account{
		Owner:        owner,
		Username:     DeriveUsername(owner),
		PinHash:      pinHash,
		InterestRate: interestRate,
		Currency:     currency,
		Locale:       locale,
		CreatedAt:    time.Now().UTC(),
	}
}

// DeriveUsername lowercases name and joins the first letter of each
// whitespace-separated token.
func DeriveUsername(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(strings.ToLower(name)) {
		for _, r := range token {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// FirstName is the first token of the owner name.
func (a *Account) FirstName() string {
	fields := strings.Fields(a.Owner)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Append records a movement of amount at the given instant.
func (a *Account) Append(id string, amount decimal.Decimal, at time.Time) (Movement, error) {
	return a.ledger.Append(Movement{ID: id, Amount: amount, At: at})
}

// Movements lists the ledger, optionally sorted by ascending amount.
func (a *Account) Movements(sortAscending bool) []Movement {
	if sortAscending {
		return a.ledger.Sorted()
	}
	return a.ledger.Movements()
}

// MovementCount returns the ledger length.
func (a *Account) MovementCount() int {
	return a.ledger.Len()
}

// Balance is recomputed from the ledger on every call.
func (a *Account) Balance() decimal.Decimal {
	return a.ledger.Balance()
}

// Summary computes balance, income, expense and interest.
func (a *Account) Summary() Summary {
	return a.ledger.Summary(a.InterestRate)
}

// ValidateDebit checks that the balance covers amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance().LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// QualifiesForLoan reports whether some movement is at least 10% of amount.
func (a *Account) QualifiesForLoan(amount decimal.Decimal) bool {
	return a.ledger.QualifiesForLoan(amount)
}
