package domain

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newLedger(t *testing.T, amounts ...int64) *Ledger {
	t.Helper()

	l := &Ledger{}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, a := range amounts {
		if _, err := l.Append(Movement{Amount: decimal.NewFromInt(a), At: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("append %d: %v", a, err)
		}
	}
	return l
}

func TestLedger_Totals(t *testing.T) {
	tests := []struct {
		name    string
		amounts []int64
		balance string
		income  string
		expense string
	}{
		{name: "empty ledger", amounts: nil, balance: "0", income: "0", expense: "0"},
		{name: "deposits only", amounts: []int64{100, 250}, balance: "350", income: "350", expense: "0"},
		{name: "mixed", amounts: []int64{200, -50, 600}, balance: "750", income: "800", expense: "50"},
		{name: "withdrawals only", amounts: []int64{-10, -5}, balance: "-15", income: "0", expense: "15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, tt.amounts...)

			if got := l.Balance().String(); got != tt.balance {
				t.Fatalf("balance = %s, want %s", got, tt.balance)
			}
			if got := l.TotalIncome().String(); got != tt.income {
				t.Fatalf("income = %s, want %s", got, tt.income)
			}
			if got := l.TotalExpense().String(); got != tt.expense {
				t.Fatalf("expense = %s, want %s", got, tt.expense)
			}
		})
	}
}

func TestLedger_SummaryMatchesTotals(t *testing.T) {
	l := newLedger(t, 200, -50, 600)
	rate := decimal.RequireFromString("1.2")

	s := l.Summary(rate)
	if !s.Balance.Equal(l.Balance()) || !s.TotalIncome.Equal(l.TotalIncome()) ||
		!s.TotalExpense.Equal(l.TotalExpense()) || !s.TotalInterest.Equal(l.TotalInterest(rate)) {
		t.Fatalf("summary %+v disagrees with the single totals", s)
	}
}

func TestLedger_SummaryIsConsistentDuringAppends(t *testing.T) {
	l := newLedger(t, 100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			amount := int64(i%7 + 1)
			if i%2 == 0 {
				amount = -amount
			}
			_, _ = l.Append(Movement{Amount: decimal.NewFromInt(amount), At: time.Now()})
		}
	}()

	for i := 0; i < 500; i++ {
		s := l.Summary(decimal.RequireFromString("1.2"))
		if !s.TotalIncome.Sub(s.TotalExpense).Equal(s.Balance) {
			t.Fatalf("torn summary: income %s expense %s balance %s", s.TotalIncome, s.TotalExpense, s.Balance)
		}
	}
	wg.Wait()
}

func TestLedger_TotalInterest(t *testing.T) {
	l := newLedger(t, 200, -50, 600)

	got := l.TotalInterest(decimal.RequireFromString("1.2"))
	if !got.Equal(decimal.RequireFromString("9.6")) {
		t.Fatalf("interest = %s, want 9.6", got)
	}
}

func TestLedger_TotalInterestSkipsSmallContributions(t *testing.T) {
	// 50 * 1.2% = 0.6 is dropped, 100 * 1.2% = 1.2 is kept.
	l := newLedger(t, 50, 100)

	got := l.TotalInterest(decimal.RequireFromString("1.2"))
	if !got.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("interest = %s, want 1.2", got)
	}

	if l.Len() != 2 {
		t.Fatalf("interest must not append movements, len = %d", l.Len())
	}
}

func TestLedger_AppendRejectsZero(t *testing.T) {
	l := newLedger(t, 10)

	if _, err := l.Append(Movement{Amount: decimal.Zero}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if l.Len() != 1 {
		t.Fatalf("rejected append changed ledger, len = %d", l.Len())
	}
}

func TestLedger_AppendAssignsPositions(t *testing.T) {
	l := newLedger(t, 5, 6)

	m, err := l.Append(Movement{Amount: decimal.NewFromInt(-3)})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if m.Position != 2 {
		t.Fatalf("position = %d, want 2", m.Position)
	}
}

func TestLedger_SortedIsAView(t *testing.T) {
	l := newLedger(t, 300, -20, 100, -20, 5)
	before := l.Movements()

	sorted := l.Sorted()
	wantAmounts := []int64{-20, -20, 5, 100, 300}
	wantPositions := []int{1, 3, 4, 2, 0}
	for i, m := range sorted {
		if !m.Amount.Equal(decimal.NewFromInt(wantAmounts[i])) {
			t.Fatalf("sorted[%d] amount = %s, want %d", i, m.Amount, wantAmounts[i])
		}
		if m.Position != wantPositions[i] {
			t.Fatalf("sorted[%d] position = %d, want %d", i, m.Position, wantPositions[i])
		}
		if !m.At.Equal(before[m.Position].At) {
			t.Fatalf("sorted[%d] lost its instant pairing", i)
		}
	}

	after := l.Movements()
	for i := range before {
		if !after[i].Amount.Equal(before[i].Amount) || after[i].Position != i {
			t.Fatalf("stored order changed at %d: %+v", i, after[i])
		}
	}
}

func TestLedger_QualifiesForLoan(t *testing.T) {
	l := newLedger(t, 200, -50)

	if !l.QualifiesForLoan(decimal.NewFromInt(2000)) {
		t.Fatal("200 is 10% of 2000 and should qualify")
	}
	if l.QualifiesForLoan(decimal.NewFromInt(2001)) {
		t.Fatal("no movement reaches 10% of 2001")
	}
}

func TestMovement_Kind(t *testing.T) {
	if k := (Movement{Amount: decimal.NewFromInt(1)}).Kind(); k != MovementDeposit {
		t.Fatalf("expected deposit, got %s", k)
	}
	if k := (Movement{Amount: decimal.NewFromInt(-1)}).Kind(); k != MovementWithdrawal {
		t.Fatalf("expected withdrawal, got %s", k)
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2021, 3, 6, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want int
	}{
		{now, 0},
		{now.Add(-23 * time.Hour), 0},
		{now.Add(-25 * time.Hour), 1},
		{now.Add(-7 * 24 * time.Hour), 7},
		{now.Add(48 * time.Hour), 2},
	}

	for _, tt := range tests {
		if got := DaysSince(tt.at, now); got != tt.want {
			t.Fatalf("DaysSince(%s) = %d, want %d", tt.at, got, tt.want)
		}
	}
}
