package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
)

// SessionResponse represents the session state in API responses.
type SessionResponse struct {
	State            string `json:"state"`
	Username         string `json:"username,omitempty"`
	Owner            string `json:"owner,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	SecondsRemaining int    `json:"seconds_remaining"`
	Remaining        string `json:"remaining"`
	Token            string `json:"token,omitempty"`
}

// SessionFromInfo converts a session snapshot to response.
func SessionFromInfo(info usecase.SessionInfo) *SessionResponse {
	resp := &SessionResponse{
		State:            string(info.State),
		SecondsRemaining: info.SecondsRemaining,
		Remaining:        usecase.FormatRemaining(info.SecondsRemaining),
	}
	if info.Account != nil {
		resp.Username = info.Account.Username
		resp.Owner = info.Account.Owner
		resp.FirstName = info.Account.FirstName()
	}
	return resp
}

// MovementResponse represents one ledger row. Position is 1-based.
type MovementResponse struct {
	Position int             `json:"position"`
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	DaysAgo  int             `json:"days_ago"`
}

// MovementFromDomain converts a domain movement to response, counting days
// against now.
func MovementFromDomain(m domain.Movement, now time.Time) MovementResponse {
	return MovementResponse{
		Position: m.Position + 1,
		ID:       m.ID,
		Kind:     string(m.Kind()),
		Amount:   m.Amount,
		Date:     m.At,
		DaysAgo:  domain.DaysSince(m.At, now),
	}
}

// MovementsResponse represents the movement list of the logged-in account.
type MovementsResponse struct {
	Sorted    bool               `json:"sorted"`
	Movements []MovementResponse `json:"movements"`
}

// MovementsFromDomain converts domain movements to response.
func MovementsFromDomain(movements []domain.Movement, sorted bool, now time.Time) *MovementsResponse {
	result := make([]MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m, now)
	}
	return &MovementsResponse{Sorted: sorted, Movements: result}
}

// SummaryResponse represents the derived totals of an account.
type SummaryResponse struct {
	Username      string          `json:"username"`
	Currency      string          `json:"currency"`
	Locale        string          `json:"locale"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	Balance       decimal.Decimal `json:"balance"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpense  decimal.Decimal `json:"total_expense"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// SummaryFromDomain converts domain summary to response.
func SummaryFromDomain(a *domain.Account, s domain.Summary) *SummaryResponse {
	return &SummaryResponse{
		Username:      a.Username,
		Currency:      a.Currency,
		Locale:        a.Locale,
		InterestRate:  a.InterestRate,
		Balance:       s.Balance,
		TotalIncome:   s.TotalIncome,
		TotalExpense:  s.TotalExpense,
		TotalInterest: s.TotalInterest,
	}
}

// TransferResponse represents a completed transfer in API responses.
type TransferResponse struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:        t.ID,
		From:      t.FromUsername,
		To:        t.ToUsername,
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
	}
}

// LoanResponse represents a loan request in API responses.
type LoanResponse struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	RequestedAt time.Time       `json:"requested_at"`
	ReviewAt    time.Time       `json:"review_at"`
}

// LoanFromDomain converts domain loan to response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:          l.ID,
		Username:    l.Username,
		Amount:      l.Amount,
		Status:      string(l.Status),
		RequestedAt: l.RequestedAt,
		ReviewAt:    l.ReviewAt,
	}
}

// AccountConsistencyResponse is one row of the consistency report.
type AccountConsistencyResponse struct {
	Username      string          `json:"username"`
	Currency      string          `json:"currency"`
	MovementCount int             `json:"movement_count"`
	Balance       decimal.Decimal `json:"balance"`
	Consistent    bool            `json:"consistent"`
}

// ConsistencyResponse represents the ledger consistency report.
type ConsistencyResponse struct {
	Consistent   bool                         `json:"consistent"`
	TotalBalance decimal.Decimal              `json:"total_balance"`
	Accounts     []AccountConsistencyResponse `json:"accounts"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	accounts := make([]AccountConsistencyResponse, len(r.Accounts))
	for i, a := range r.Accounts {
		accounts[i] = AccountConsistencyResponse{
			Username:      a.Username,
			Currency:      a.Currency,
			MovementCount: a.MovementCount,
			Balance:       a.Balance,
			Consistent:    a.Consistent,
		}
	}
	return &ConsistencyResponse{
		Consistent:   r.Consistent,
		TotalBalance: r.TotalBalance,
		Accounts:     accounts,
	}
}

// ErrorResponse represents an error in API responses. Error is a stable code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
