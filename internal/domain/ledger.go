package domain

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	minInterest   = decimal.NewFromInt(1)
	loanThreshold = decimal.New(1, -1)
)

// Ledger is an append-only sequence of movements. Every derived value is
// recomputed from the movements on read.
type Ledger struct {
	mu        sync.RWMutex
	movements []Movement
}

// Append adds a movement at the end of the ledger and returns it with its
// position filled in.
func (l *Ledger) Append(m Movement) (Movement, error) {
	if m.Amount.IsZero() {
		return Movement{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m.Position = len(l.movements)
	l.movements = append(l.movements, m)
	return m, nil
}

// Len returns the number of movements.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.movements)
}

// Movements returns a copy of the movements in insertion order.
func (l *Ledger) Movements() []Movement {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Movement, len(l.movements))
	copy(out, l.movements)
	return out
}

// Sorted returns a copy of the movements ordered by ascending amount. Equal
// amounts keep their ledger order. The stored order is left untouched.
func (l *Ledger) Sorted() []Movement {
	out := l.Movements()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.LessThan(out[j].Amount)
	})
	return out
}

// Balance is the sum of all movement amounts.
func (l *Ledger) Balance() decimal.Decimal {
	return l.sum(func(decimal.Decimal) bool { return true })
}

// TotalIncome is the sum of all deposits.
func (l *Ledger) TotalIncome() decimal.Decimal {
	return l.sum(decimal.Decimal.IsPositive)
}

// TotalExpense is the absolute sum of all withdrawals.
func (l *Ledger) TotalExpense() decimal.Decimal {
	return l.sum(decimal.Decimal.IsNegative).Abs()
}

// TotalInterest sums amount*rate/100 over deposits, skipping contributions
// below one unit of currency. It is a display value and never appended.
func (l *Ledger) TotalInterest(rate decimal.Decimal) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, m := range l.movements {
		total = total.Add(interest(m.Amount, rate))
	}
	return total
}

// Summary computes every derived value from one snapshot of the movements.
func (l *Ledger) Summary(rate decimal.Decimal) Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{
		Balance:       decimal.Zero,
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		TotalInterest: decimal.Zero,
	}
	for _, m := range l.movements {
		s.Balance = s.Balance.Add(m.Amount)
		if m.Amount.IsPositive() {
			s.TotalIncome = s.TotalIncome.Add(m.Amount)
		} else {
			s.TotalExpense = s.TotalExpense.Add(m.Amount.Abs())
		}
		s.TotalInterest = s.TotalInterest.Add(interest(m.Amount, rate))
	}
	return s
}

// interest is the display interest earned by one movement, zero for
// withdrawals and for contributions below one unit.
func interest(amount, rate decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	i := amount.Mul(rate).Div(hundred)
	if i.LessThan(minInterest) {
		return decimal.Zero
	}
	return i
}

// QualifiesForLoan reports whether any movement is at least 10% of amount.
func (l *Ledger) QualifiesForLoan(amount decimal.Decimal) bool {
	threshold := amount.Mul(loanThreshold)

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, m := range l.movements {
		if m.Amount.GreaterThanOrEqual(threshold) {
			return true
		}
	}
	return false
}

func (l *Ledger) sum(keep func(decimal.Decimal) bool) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, m := range l.movements {
		if keep(m.Amount) {
			total = total.Add(m.Amount)
		}
	}
	return total
}
