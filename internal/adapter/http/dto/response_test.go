package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
)

func TestSessionFromInfo(t *testing.T) {
	account := domain.NewAccount("Jessica Davis", nil, decimal.RequireFromString("1.5"), "USD", "en-US")

	resp := SessionFromInfo(usecase.SessionInfo{
		State:            usecase.StateLoggedIn,
		ID:               "sess-1",
		Account:          account,
		SecondsRemaining: 299,
	})
	if resp.State != "logged_in" || resp.Username != "jd" || resp.FirstName != "Jessica" {
		t.Fatalf("unexpected session response: %+v", resp)
	}
	if resp.Remaining != "04:59" {
		t.Fatalf("expected remaining 04:59, got %s", resp.Remaining)
	}

	out := SessionFromInfo(usecase.SessionInfo{State: usecase.StateLoggedOut})
	if out.State != "logged_out" || out.Username != "" || out.Remaining != "00:00" {
		t.Fatalf("unexpected logged out response: %+v", out)
	}
}

func TestMovementFromDomain(t *testing.T) {
	now := time.Date(2020, 7, 12, 12, 0, 0, 0, time.UTC)
	m := domain.Movement{
		ID:       "m-1",
		Position: 0,
		Amount:   decimal.RequireFromString("-642.21"),
		At:       now.Add(-72 * time.Hour),
	}

	resp := MovementFromDomain(m, now)
	if resp.Position != 1 {
		t.Fatalf("expected 1-based position, got %d", resp.Position)
	}
	if resp.Kind != "withdrawal" || resp.DaysAgo != 3 {
		t.Fatalf("unexpected movement response: %+v", resp)
	}
}

func TestConsistencyFromReport(t *testing.T) {
	report := &usecase.ConsistencyReport{
		Accounts: []usecase.AccountConsistency{
			{Username: "jd", Currency: "USD", MovementCount: 8, Balance: decimal.NewFromInt(10), Consistent: true},
		},
		TotalBalance: decimal.NewFromInt(10),
		Consistent:   true,
	}

	resp := ConsistencyFromReport(report)
	if !resp.Consistent || len(resp.Accounts) != 1 || resp.Accounts[0].MovementCount != 8 {
		t.Fatalf("unexpected consistency response: %+v", resp)
	}
}
