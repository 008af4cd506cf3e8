package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/metrics"
)

// TransferUseCase moves money from the session's account to another account.
type TransferUseCase struct {
	session     *Session
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	session *Session,
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		session:     session,
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		logger:      logger,
		metrics:     metrics,
	}
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	ToUsername string
	Amount     decimal.Decimal
}

// Transfer debits the logged-in account and credits the recipient. On any
// error no account is changed.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	transfer, err := uc.transfer(ctx, input)
	if err != nil {
		uc.metrics.Reject("transfer", domain.ErrorCode(err))
		uc.logger.Info().
			Err(err).
			Str("to", input.ToUsername).
			Str("amount", input.Amount.String()).
			Msg("transfer rejected")
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCompleted.Inc()
		uc.metrics.TransferAmount.Observe(transfer.Amount.InexactFloat64())
	}
	uc.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("from", transfer.FromUsername).
		Str("to", transfer.ToUsername).
		Str("amount", transfer.Amount.String()).
		Msg("transfer completed")

	return transfer, nil
}

func (uc *TransferUseCase) transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	sender, sessionID, err := uc.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.ToUsername == sender.Username {
		return nil, domain.ErrSelfTransfer
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// The sender may have been closed between reading the session and
	// taking the lock.
	if _, err := uc.accountRepo.GetByUsername(txCtx, sender.Username); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, err
	}

	recipient, err := uc.accountRepo.GetByUsername(txCtx, input.ToUsername)
	if err != nil {
		return nil, err
	}

	if err := sender.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:           uc.idGen.Generate(),
		FromUsername: sender.Username,
		ToUsername:   recipient.Username,
		Amount:       input.Amount,
		CreatedAt:    now,
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transfer.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCompleted,
		Payload:       domain.TransferCompletedEvent(transfer, sender.Currency),
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	// Each side is stamped when it is appended.
	transfer.Debit, err = sender.Append(uc.idGen.Generate(), input.Amount.Neg(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	transfer.Credit, err = recipient.Append(uc.idGen.Generate(), input.Amount, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.session.touch(sessionID)

	return transfer, nil
}
