package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Session
	SessionTimeout      time.Duration `env:"SESSION_TIMEOUT"       envDefault:"300s"`
	SessionTickInterval time.Duration `env:"SESSION_TICK_INTERVAL" envDefault:"1s"`
	LoanReviewDelay     time.Duration `env:"LOAN_REVIEW_DELAY"     envDefault:"3s"`

	// Accounts
	SeedFile    string `env:"SEED_FILE"     envDefault:""`
	PinHashCost int    `env:"PIN_HASH_COST" envDefault:"10"`

	// Redis (optional - leave empty to disable)
	RedisURL           string `env:"REDIS_URL"            envDefault:""`
	RedisEventsChannel string `env:"REDIS_EVENTS_CHANNEL" envDefault:"bankist:events"`

	// Outbox publishing
	EventPublishInterval time.Duration `env:"EVENT_PUBLISH_INTERVAL" envDefault:"1s"`
	EventBatchSize       int           `env:"EVENT_BATCH_SIZE"       envDefault:"100"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Authentication (optional - leave empty to disable)
	JWTSecret     string        `env:"JWT_SECRET"       envDefault:""`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION"   envDefault:"1h"`
	AuthEnabled   bool          `env:"AUTH_ENABLED"     envDefault:"false"`

	// Login throttling, requests per second per client
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT" envDefault:"1"`
	LoginRateBurst int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
