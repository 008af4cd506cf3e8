package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/metrics"
)

// LoanUseCase reviews loan requests and credits them after a delay. Pending
// loans are keyed by username and discarded when their session ends.
type LoanUseCase struct {
	session     *Session
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	reviewDelay time.Duration

	mu      sync.Mutex
	pending map[string]map[string]*pendingLoan
	wg      sync.WaitGroup
}

type pendingLoan struct {
	loan  *domain.Loan
	timer *time.Timer
}

// NewLoanUseCase creates a LoanUseCase and subscribes it to session logouts.
func NewLoanUseCase(
	session *Session,
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	reviewDelay time.Duration,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *LoanUseCase {
	if reviewDelay < 0 {
		reviewDelay = DefaultLoanReviewDelay
	}

	uc := &LoanUseCase{
		session:     session,
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		logger:      logger,
		metrics:     metrics,
		reviewDelay: reviewDelay,
		pending:     make(map[string]map[string]*pendingLoan),
	}

	session.OnLogout(uc.DiscardPending)

	return uc
}

// RequestLoan validates a loan for the logged-in account and schedules it.
// The amount is floored to a whole number first. The returned loan is
// pending; it is credited after the review delay unless discarded.
func (uc *LoanUseCase) RequestLoan(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error) {
	loan, err := uc.request(ctx, amount)
	if err != nil {
		uc.metrics.Reject("loan", domain.ErrorCode(err))
		uc.logger.Info().Err(err).Str("amount", amount.String()).Msg("loan rejected")
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansRequested.Inc()
	}
	uc.logger.Info().
		Str("loan_id", loan.ID).
		Str("username", loan.Username).
		Str("amount", loan.Amount.String()).
		Time("review_at", loan.ReviewAt).
		Msg("loan scheduled")

	return loan, nil
}

func (uc *LoanUseCase) request(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error) {
	account, sessionID, err := uc.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	amount = amount.Floor()
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	if !account.QualifiesForLoan(amount) {
		return nil, domain.ErrLoanRejected
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:          uc.idGen.Generate(),
		Username:    account.Username,
		SessionID:   sessionID,
		Amount:      amount,
		Status:      domain.LoanStatusPending,
		RequestedAt: now,
		ReviewAt:    now.Add(uc.reviewDelay),
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	byID, ok := uc.pending[loan.Username]
	if !ok {
		byID = make(map[string]*pendingLoan)
		uc.pending[loan.Username] = byID
	}

	p := &pendingLoan{loan: loan}
	uc.wg.Add(1)
	p.timer = time.AfterFunc(uc.reviewDelay, func() {
		defer uc.wg.Done()
		uc.complete(loan.Username, loan.ID)
	})
	byID[loan.ID] = p

	scheduled := *loan
	return &scheduled, nil
}

// Pending returns copies of the loans still waiting for review for username.
func (uc *LoanUseCase) Pending(username string) []*domain.Loan {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*domain.Loan, 0, len(uc.pending[username]))
	for _, p := range uc.pending[username] {
		loan := *p.loan
		out = append(out, &loan)
	}
	return out
}

// DiscardPending cancels every pending loan of username whose session is
// no longer active.
func (uc *LoanUseCase) DiscardPending(username string) {
	uc.mu.Lock()
	var discarded []*domain.Loan
	for id, p := range uc.pending[username] {
		if uc.session.Holds(p.loan.SessionID, username) {
			continue
		}
		if p.timer.Stop() {
			uc.wg.Done()
		}
		delete(uc.pending[username], id)
		p.loan.Status = domain.LoanStatusDiscarded
		discarded = append(discarded, p.loan)
	}
	if len(uc.pending[username]) == 0 {
		delete(uc.pending, username)
	}
	uc.mu.Unlock()

	for _, loan := range discarded {
		uc.recordDiscard(loan)
	}
}

// Wait blocks until every scheduled review has finished or been stopped.
func (uc *LoanUseCase) Wait() {
	uc.wg.Wait()
}

// complete credits the loan if it is still pending and its session is still
// the active one for an account that still exists.
func (uc *LoanUseCase) complete(username, loanID string) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		uc.logger.Error().Err(err).Str("loan_id", loanID).Msg("loan review could not start")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	uc.mu.Lock()
	p, ok := uc.pending[username][loanID]
	if ok {
		delete(uc.pending[username], loanID)
		if len(uc.pending[username]) == 0 {
			delete(uc.pending, username)
		}
	}
	uc.mu.Unlock()

	if !ok {
		return
	}
	loan := p.loan

	account, err := uc.accountRepo.GetByUsername(ctx, username)
	if err != nil || !uc.session.Holds(loan.SessionID, username) {
		loan.Status = domain.LoanStatusDiscarded
		_ = tx.Rollback(ctx)
		uc.recordDiscard(loan)
		return
	}

	now := time.Now().UTC()
	loan.Status = domain.LoanStatusApproved

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanApproved,
		Payload:       domain.LoanEvent(loan),
		CreatedAt:     now,
	}
	fail := func(err error, msg string) {
		uc.logger.Error().Err(err).Str("loan_id", loan.ID).Msg(msg)
		loan.Status = domain.LoanStatusDiscarded
		_ = tx.Rollback(ctx)
		uc.recordDiscard(loan)
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		fail(err, "loan approval event failed")
		return
	}

	if _, err := account.Append(uc.idGen.Generate(), loan.Amount, now); err != nil {
		fail(err, "loan credit failed")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		fail(err, "loan commit failed")
		return
	}

	uc.session.touch(loan.SessionID)

	if uc.metrics != nil {
		uc.metrics.LoansApproved.Inc()
	}
	uc.logger.Info().
		Str("loan_id", loan.ID).
		Str("username", username).
		Str("amount", loan.Amount.String()).
		Msg("loan approved")
}

func (uc *LoanUseCase) recordDiscard(loan *domain.Loan) {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanDiscarded,
		Payload:       domain.LoanEvent(loan),
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(context.Background(), nil, event); err != nil {
		uc.logger.Error().Err(err).Str("loan_id", loan.ID).Msg("loan discard event failed")
	}

	if uc.metrics != nil {
		uc.metrics.LoansDiscarded.Inc()
	}
	uc.logger.Warn().
		Str("loan_id", loan.ID).
		Str("username", loan.Username).
		Msg("pending loan discarded")
}
