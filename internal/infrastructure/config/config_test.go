package config_test

import (
	"testing"
	"time"

	"github.com/iho/bankist/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.SessionTimeout != 300*time.Second {
		t.Fatalf("expected 300s session timeout, got %v", cfg.SessionTimeout)
	}

	if cfg.SessionTickInterval != time.Second {
		t.Fatalf("expected 1s tick interval, got %v", cfg.SessionTickInterval)
	}

	if cfg.LoanReviewDelay != 3*time.Second {
		t.Fatalf("expected 3s loan review delay, got %v", cfg.LoanReviewDelay)
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.PinHashCost != 10 || cfg.EventBatchSize != 100 {
		t.Fatalf("unexpected defaults: cost %d, batch %d", cfg.PinHashCost, cfg.EventBatchSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "90s")
	t.Setenv("SESSION_TICK_INTERVAL", "0s")
	t.Setenv("LOAN_REVIEW_DELAY", "250ms")
	t.Setenv("SEED_FILE", "/etc/bankist/seed.json")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("LOGIN_RATE_LIMIT", "0.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.SessionTimeout != 90*time.Second {
		t.Fatalf("expected 90s session timeout, got %v", cfg.SessionTimeout)
	}

	if cfg.SessionTickInterval != 0 {
		t.Fatalf("expected disabled tick interval, got %v", cfg.SessionTickInterval)
	}

	if cfg.LoanReviewDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms review delay, got %v", cfg.LoanReviewDelay)
	}

	if cfg.SeedFile != "/etc/bankist/seed.json" {
		t.Fatalf("expected custom seed file, got %s", cfg.SeedFile)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth overrides, got secret=%q enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}

	if cfg.LoginRateLimit != 0.5 {
		t.Fatalf("expected login rate 0.5, got %v", cfg.LoginRateLimit)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "five minutes")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
