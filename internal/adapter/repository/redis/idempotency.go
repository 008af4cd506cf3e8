package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessingMarker is stored under a key while its first request is running.
const ProcessingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "bankist:idempotency:",
	}
}

// CheckAndSet claims key with response, or with ProcessingMarker when
// response is nil. If key is already claimed it returns the stored value.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := response
	if value == nil {
		value = []byte(ProcessingMarker)
	}

	// One retry covers the key expiring between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
		if err != nil {
			return false, nil, err
		}
		if set {
			return false, nil, nil
		}

		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if err == nil {
			return true, existing, nil
		}
		if !errors.Is(err, redis.Nil) {
			return false, nil, err
		}
	}

	return false, nil, nil
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
