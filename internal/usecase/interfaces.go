package usecase

import (
	"context"
	"time"

	"github.com/iho/bankist/internal/domain"
)

// AccountRepository is the account registry keyed by username.
type AccountRepository interface {
	Add(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Remove(ctx context.Context, tx Transaction, username string) error
	List(ctx context.Context) ([]*domain.Account, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction is an exclusive unit of work over the registry.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PinVerifier checks a pin against its stored hash.
type PinVerifier interface {
	VerifyPin(hash []byte, pin int) bool
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops key so the request can be retried.
	Release(ctx context.Context, key string) error
}
