package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankist/internal/adapter/repository/memory"
	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
	"github.com/iho/bankist/internal/usecase/mocks"
)

func TestTransferUseCase_Scenario(t *testing.T) {
	b := newBank(t, time.Second)
	ctx := context.Background()

	info := b.login(t, "jd", 2222)
	if info.Account.Username != "jd" {
		t.Fatalf("expected account2, got %s", info.Account.Username)
	}

	for i := 0; i < 10; i++ {
		b.session.Tick()
	}

	transfer, err := b.transfer.Transfer(ctx, usecase.TransferInput{ToUsername: "jj", Amount: dec("100")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.balance(t, "jd"); !got.Equal(dec("11620")) {
		t.Errorf("expected jd balance 11620, got %s", got)
	}
	if got := b.balance(t, "jj"); !got.Equal(dec("26052.59")) {
		t.Errorf("expected jj balance 26052.59, got %s", got)
	}
	if got := b.session.Info().SecondsRemaining; got != 300 {
		t.Errorf("expected timer reset to 300, got %d", got)
	}

	if !transfer.Debit.Amount.Equal(dec("-100")) || transfer.Debit.Kind() != domain.MovementWithdrawal {
		t.Errorf("unexpected debit %+v", transfer.Debit)
	}
	if !transfer.Credit.Amount.Equal(dec("100")) || transfer.Credit.Position != 8 {
		t.Errorf("unexpected credit %+v", transfer.Credit)
	}

	// Self-transfer leaves both balances untouched.
	_, err = b.transfer.Transfer(ctx, usecase.TransferInput{ToUsername: "jd", Amount: dec("50")})
	if !errors.Is(err, domain.ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	if got := b.balance(t, "jd"); !got.Equal(dec("11620")) {
		t.Errorf("self-transfer changed jd balance to %s", got)
	}
	if got := b.balance(t, "jj"); !got.Equal(dec("26052.59")) {
		t.Errorf("self-transfer changed jj balance to %s", got)
	}

	if n := len(b.eventsOfType(domain.EventTypeTransferCompleted)); n != 1 {
		t.Errorf("expected 1 transfer event, got %d", n)
	}
	if got := testutil.ToFloat64(b.metrics.TransfersCompleted); got != 1 {
		t.Errorf("expected 1 completed transfer metric, got %v", got)
	}
	if got := testutil.ToFloat64(b.metrics.OperationsRejected.WithLabelValues("transfer", "self_transfer")); got != 1 {
		t.Errorf("expected 1 self_transfer rejection, got %v", got)
	}
}

func TestTransferUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		login   bool
		to      string
		amount  string
		wantErr error
	}{
		{"no session", false, "jj", "10", domain.ErrNoActiveSession},
		{"zero amount", true, "jj", "0", domain.ErrInvalidAmount},
		{"negative amount", true, "jj", "-5", domain.ErrInvalidAmount},
		{"self transfer", true, "jd", "10", domain.ErrSelfTransfer},
		{"unknown recipient", true, "zz", "10", domain.ErrAccountNotFound},
		{"more than balance", true, "jj", "11720.01", domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBank(t, time.Second)
			if tt.login {
				b.login(t, "jd", 2222)
				b.session.Tick()
			}

			_, err := b.transfer.Transfer(context.Background(), usecase.TransferInput{ToUsername: tt.to, Amount: dec(tt.amount)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if got := b.balance(t, "jd"); !got.Equal(dec("11720")) {
				t.Errorf("jd balance changed to %s", got)
			}
			if got := b.balance(t, "jj"); !got.Equal(dec("25952.59")) {
				t.Errorf("jj balance changed to %s", got)
			}
			if b.outbox.Len() != 0 {
				t.Errorf("expected no outbox events, got %d", b.outbox.Len())
			}
			if tt.login && b.session.Info().SecondsRemaining != 299 {
				t.Errorf("failed transfer must not reset the timer")
			}
		})
	}
}

func TestTransferUseCase_ExactBalance(t *testing.T) {
	b := newBank(t, time.Second)
	b.login(t, "jd", 2222)

	if _, err := b.transfer.Transfer(context.Background(), usecase.TransferInput{ToUsername: "jj", Amount: dec("11720")}); err != nil {
		t.Fatalf("transfer of the whole balance failed: %v", err)
	}
	if got := b.balance(t, "jd"); !got.IsZero() {
		t.Fatalf("expected zero balance, got %s", got)
	}
}

func TestTransferUseCase_BoundToReplacedSession(t *testing.T) {
	b := newBank(t, time.Second)
	first := b.login(t, "jd", 2222)
	b.login(t, "jj", 1111)

	ctx := usecase.WithSessionID(context.Background(), first.ID)
	_, err := b.transfer.Transfer(ctx, usecase.TransferInput{ToUsername: "jd", Amount: dec("100")})
	if !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if _, err := b.loan.RequestLoan(ctx, dec("100")); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession for loan, got %v", err)
	}
	if _, _, err := b.account.Summary(ctx); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession for summary, got %v", err)
	}
	if got := b.balance(t, "jj"); !got.Equal(dec("25952.59")) {
		t.Fatalf("jj balance changed to %s", got)
	}

	current, _, err := b.session.Current(context.Background())
	if err != nil || current.Username != "jj" {
		t.Fatalf("expected jj to stay logged in, got %v", err)
	}
}

func TestTransferUseCase_ConcurrentTransfersConserveMoney(t *testing.T) {
	b := newBank(t, time.Second)
	b.login(t, "jd", 2222)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.transfer.Transfer(context.Background(), usecase.TransferInput{ToUsername: "jj", Amount: dec("100")})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 117 {
		t.Fatalf("expected 117 transfers to succeed, got %d", succeeded)
	}
	if got := b.balance(t, "jd"); !got.Equal(dec("20")) {
		t.Fatalf("expected jd balance 20, got %s", got)
	}
	total := b.balance(t, "jd").Add(b.balance(t, "jj"))
	if !total.Equal(dec("37672.59")) {
		t.Fatalf("system total changed to %s", total)
	}
}

func TestTransferUseCase_BeginError(t *testing.T) {
	ctrl := gomock.NewController(t)

	b := newBank(t, time.Second)
	b.login(t, "jd", 2222)

	txManager := mocks.NewMockTransactionManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("registry locked"))

	uc := usecase.NewTransferUseCase(b.session, txManager, b.accounts, b.outbox, memory.NewULIDGenerator(), zerolog.Nop(), nil)

	_, err := uc.Transfer(context.Background(), usecase.TransferInput{ToUsername: "jj", Amount: dec("10")})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := b.balance(t, "jd"); !got.Equal(dec("11720")) {
		t.Fatalf("jd balance changed to %s", got)
	}
}

func TestTransferUseCase_OutboxErrorLeavesLedgersUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)

	b := newBank(t, time.Second)
	b.login(t, "jd", 2222)

	tx := mocks.NewMockTransaction(ctrl)
	txManager := mocks.NewMockTransactionManager(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(errors.New("outbox full"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewTransferUseCase(b.session, txManager, b.accounts, outbox, memory.NewULIDGenerator(), zerolog.Nop(), nil)

	if _, err := uc.Transfer(context.Background(), usecase.TransferInput{ToUsername: "jj", Amount: dec("10")}); err == nil {
		t.Fatalf("expected error")
	}
	if got := b.balance(t, "jd"); !got.Equal(dec("11720")) {
		t.Errorf("jd balance changed to %s", got)
	}
	if got := b.balance(t, "jj"); !got.Equal(dec("25952.59")) {
		t.Errorf("jj balance changed to %s", got)
	}
}
