// Package redis holds the Redis-backed adapters: idempotency keys for
// mutating HTTP calls and the outbox event channel.
package redis

import (
	"github.com/iho/bankist/internal/infrastructure/eventpublisher"
	"github.com/iho/bankist/internal/usecase"
)

var (
	_ usecase.IdempotencyStore = (*IdempotencyStore)(nil)
	_ eventpublisher.Publisher = (*EventPublisher)(nil)
)
