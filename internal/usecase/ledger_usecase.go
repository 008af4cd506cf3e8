package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when an account's totals disagree with its balance.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: income minus expense does not equal balance")
)

// AccountConsistency is one row of a consistency report.
type AccountConsistency struct {
	Username      string
	Currency      string
	MovementCount int
	Balance       decimal.Decimal
	Consistent    bool
}

// ConsistencyReport summarizes every live account.
type ConsistencyReport struct {
	Accounts     []AccountConsistency
	TotalBalance decimal.Decimal
	Consistent   bool
}

// LedgerUseCase handles registry-wide ledger checks.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(txManager TransactionManager, accountRepo AccountRepository) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
	}
}

// CheckConsistency verifies that for every account the balance equals total
// income minus total expense. The report is taken under the registry lock so
// no operation is half applied while it is built. The returned error is
// ErrInconsistentLedger when any account disagrees; the report is returned
// either way.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Accounts:     make([]AccountConsistency, 0, len(accounts)),
		TotalBalance: decimal.Zero,
		Consistent:   true,
	}

	for _, account := range accounts {
		summary := account.Summary()
		ok := summary.TotalIncome.Sub(summary.TotalExpense).Equal(summary.Balance)

		report.Accounts = append(report.Accounts, AccountConsistency{
			Username:      account.Username,
			Currency:      account.Currency,
			MovementCount: account.MovementCount(),
			Balance:       summary.Balance,
			Consistent:    ok,
		})
		report.TotalBalance = report.TotalBalance.Add(summary.Balance)
		if !ok {
			report.Consistent = false
		}
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}
	return report, nil
}
