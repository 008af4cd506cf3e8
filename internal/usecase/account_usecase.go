package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/metrics"
)

// AccountUseCase serves the logged-in account's views and closes accounts.
type AccountUseCase struct {
	session     *Session
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	pins        PinVerifier
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	session *Session,
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	pins PinVerifier,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		session:     session,
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		pins:        pins,
		idGen:       idGen,
		logger:      logger,
		metrics:     metrics,
	}
}

// GetAccount retrieves an account by username.
func (uc *AccountUseCase) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	return uc.accountRepo.GetByUsername(ctx, username)
}

// ListAccounts returns every registered account in registration order.
func (uc *AccountUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return uc.accountRepo.List(ctx)
}

// ListMovements returns the logged-in account's movements, in insertion
// order or ascending by amount.
func (uc *AccountUseCase) ListMovements(ctx context.Context, sortAscending bool) ([]domain.Movement, error) {
	account, _, err := uc.session.Current(ctx)
	if err != nil {
		return nil, err
	}
	return account.Movements(sortAscending), nil
}

// Summary returns the logged-in account's derived totals.
func (uc *AccountUseCase) Summary(ctx context.Context) (*domain.Account, domain.Summary, error) {
	account, _, err := uc.session.Current(ctx)
	if err != nil {
		return nil, domain.Summary{}, err
	}
	return account, account.Summary(), nil
}

// CloseAccount removes the logged-in account when the credentials match it
// and ends the session. Mismatched credentials leave everything unchanged.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, username string, pin int) error {
	closed, err := uc.closeAccount(ctx, username, pin)
	if err != nil {
		uc.metrics.Reject("close", domain.ErrorCode(err))
		uc.logger.Info().Err(err).Str("username", username).Msg("close account rejected")
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsClosed.Inc()
	}
	uc.logger.Info().
		Str("username", closed.Username).
		Str("owner", closed.Owner).
		Msg("account closed")

	return nil
}

func (uc *AccountUseCase) closeAccount(ctx context.Context, username string, pin int) (*domain.Account, error) {
	account, _, err := uc.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	if username != account.Username || !uc.pins.VerifyPin(account.PinHash, pin) {
		return nil, domain.ErrInvalidCredentials
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.Username,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountClosed,
		Payload:       domain.AccountClosedEvent(account),
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Remove(txCtx, tx, account.Username); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	// A login that raced this close may hold a newer session on the account.
	uc.session.logoutUser(account.Username)

	return account, nil
}
