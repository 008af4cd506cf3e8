package memory

import (
	"context"
	"sync"

	"github.com/iho/bankist/internal/usecase"
)

// TxManager implements usecase.TransactionManager with a single registry-wide
// lock. A transaction holds the lock from Begin until Commit or Rollback, so
// balance reads, checks and appends of one operation are never interleaved
// with another's.
type TxManager struct {
	sem chan struct{}
}

// NewTxManager creates a new TxManager.
func NewTxManager() *TxManager {
	return &TxManager{sem: make(chan struct{}, 1)}
}

// Begin waits for the registry lock or for ctx to be done.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.sem <- struct{}{}:
		return &Tx{release: func() { <-m.sem }}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tx is a held registry lock. Ledger appends are applied directly, so callers
// append only after every check has passed. Writes staged with onCommit run
// on Commit and are dropped on Rollback. Ending a Tx twice is a no-op.
type Tx struct {
	once    sync.Once
	release func()
	staged  []func()
}

// Commit applies staged writes and releases the lock.
func (t *Tx) Commit(ctx context.Context) error {
	t.once.Do(func() {
		for _, apply := range t.staged {
			apply()
		}
		t.staged = nil
		t.release()
	})
	return nil
}

// Rollback drops staged writes and releases the lock.
func (t *Tx) Rollback(ctx context.Context) error {
	t.once.Do(func() {
		t.staged = nil
		t.release()
	})
	return nil
}

func (t *Tx) onCommit(apply func()) {
	t.staged = append(t.staged, apply)
}
