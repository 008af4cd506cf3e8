package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/bankist/internal/adapter/repository/memory"
	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/auth"
	"github.com/iho/bankist/internal/infrastructure/metrics"
	"github.com/iho/bankist/internal/infrastructure/seed"
	"github.com/iho/bankist/internal/usecase"
)

// bank wires the use cases over the seeded in-memory registry. The session
// countdown is driven by hand through Session.Tick.
type bank struct {
	accounts *memory.AccountRepository
	outbox   *memory.OutboxRepository
	tx       *memory.TxManager
	pins     *auth.PinHasher
	metrics  *metrics.Metrics

	session  *usecase.Session
	transfer *usecase.TransferUseCase
	loan     *usecase.LoanUseCase
	account  *usecase.AccountUseCase
	ledger   *usecase.LedgerUseCase
}

func newBank(t *testing.T, reviewDelay time.Duration) *bank {
	t.Helper()

	b := &bank{
		accounts: memory.NewAccountRepository(),
		outbox:   memory.NewOutboxRepository(),
		tx:       memory.NewTxManager(),
		pins:     auth.NewPinHasher(bcrypt.MinCost),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	idGen := memory.NewULIDGenerator()
	logger := zerolog.Nop()

	records, err := seed.Default()
	if err != nil {
		t.Fatalf("failed to load seed: %v", err)
	}
	if _, err := seed.Apply(context.Background(), b.accounts, b.pins, idGen, records); err != nil {
		t.Fatalf("failed to apply seed: %v", err)
	}

	b.session = usecase.NewSession(usecase.SessionConfig{Timeout: usecase.DefaultSessionTimeout}, b.accounts, b.pins, idGen, logger, b.metrics)
	b.transfer = usecase.NewTransferUseCase(b.session, b.tx, b.accounts, b.outbox, idGen, logger, b.metrics)
	b.loan = usecase.NewLoanUseCase(b.session, b.tx, b.accounts, b.outbox, idGen, reviewDelay, logger, b.metrics)
	b.account = usecase.NewAccountUseCase(b.session, b.tx, b.accounts, b.outbox, b.pins, idGen, logger, b.metrics)
	b.ledger = usecase.NewLedgerUseCase(b.tx, b.accounts)

	t.Cleanup(func() {
		b.session.Logout()
		b.loan.Wait()
	})

	return b
}

func (b *bank) login(t *testing.T, username string, pin int) *usecase.SessionInfo {
	t.Helper()

	info, err := b.session.Login(context.Background(), username, pin)
	if err != nil {
		t.Fatalf("login %s failed: %v", username, err)
	}
	return info
}

func (b *bank) balance(t *testing.T, username string) decimal.Decimal {
	t.Helper()

	account, err := b.accounts.GetByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("lookup %s failed: %v", username, err)
	}
	return account.Balance()
}

func (b *bank) eventsOfType(eventType string) []*domain.OutboxEvent {
	events, _ := b.outbox.GetUnpublished(context.Background(), 1000)

	var out []*domain.OutboxEvent
	for _, e := range events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
