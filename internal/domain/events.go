package domain

import "time"

// Event types
const (
	EventTypeTransferCompleted = "transfer.completed"
	EventTypeLoanApproved      = "loan.approved"
	EventTypeLoanDiscarded     = "loan.discarded"
	EventTypeAccountClosed     = "account.closed"
)

// Aggregate types
const (
	AggregateTypeTransfer = "transfer"
	AggregateTypeLoan     = "loan"
	AggregateTypeAccount  = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransferCompletedEvent returns the outbox payload for a transfer.
func TransferCompletedEvent(t *Transfer, currency string) map[string]any {
	return map[string]any{
		"transfer_id":   t.ID,
		"from_username": t.FromUsername,
		"to_username":   t.ToUsername,
		"amount":        t.Amount.String(),
		"currency":      currency,
	}
}

// LoanEvent returns the outbox payload for a loan decision.
func LoanEvent(l *Loan) map[string]any {
	return map[string]any{
		"loan_id":  l.ID,
		"username": l.Username,
		"amount":   l.Amount.String(),
		"status":   string(l.Status),
	}
}

// AccountClosedEvent returns the outbox payload for a closed account.
func AccountClosedEvent(a *Account) map[string]any {
	return map[string]any{
		"username": a.Username,
		"balance":  a.Balance().String(),
		"currency": a.Currency,
	}
}
