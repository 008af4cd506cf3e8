package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
)

// AccountRepository is the account registry: live accounts keyed by username,
// listed in registration order.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	order    []string
}

// NewAccountRepository creates an empty registry.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Add registers account under its username.
func (r *AccountRepository) Add(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, account.Username)
	}

	r.accounts[account.Username] = account
	r.order = append(r.order, account.Username)
	return nil
}

// GetByUsername returns the live account registered under username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[username]
	if !exists {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// Remove deletes username from the registry once tx commits. Without a
// memory transaction the account is deleted immediately.
func (r *AccountRepository) Remove(ctx context.Context, tx usecase.Transaction, username string) error {
	r.mu.RLock()
	_, exists := r.accounts[username]
	r.mu.RUnlock()
	if !exists {
		return domain.ErrAccountNotFound
	}

	if memTx, ok := tx.(*Tx); ok && memTx != nil {
		memTx.onCommit(func() { r.delete(username) })
		return nil
	}

	r.delete(username)
	return nil
}

func (r *AccountRepository) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, username)
	for i, u := range r.order {
		if u == username {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// List returns the live accounts in registration order.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.order))
	for _, username := range r.order {
		accounts = append(accounts, r.accounts[username])
	}
	return accounts, nil
}
