package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// RetryConfig bounds how long NewClientWithRetry keeps pinging.
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetry is used by NewClient.
var DefaultRetry = RetryConfig{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     time.Second,
	MaxElapsedTime:  5 * time.Second,
}

// NewClient creates a new Redis client, retrying the initial ping with
// DefaultRetry.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithRetry(ctx, redisURL, DefaultRetry)
}

// NewClientWithRetry creates a new Redis client and retries the initial ping
// with exponential backoff until it succeeds, retry is exhausted or ctx is done.
func NewClientWithRetry(ctx context.Context, redisURL string, retry RetryConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retry.InitialInterval
	b.MaxInterval = retry.MaxInterval
	b.MaxElapsedTime = retry.MaxElapsedTime

	ping := func() error {
		return client.Ping(ctx).Err()
	}

	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
