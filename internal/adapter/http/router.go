package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/bankist/internal/adapter/http/handler"
	"github.com/iho/bankist/internal/adapter/http/middleware"
	"github.com/iho/bankist/internal/infrastructure/metrics"
	"github.com/iho/bankist/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SessionHandler  *handler.SessionHandler
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	LoanHandler     *handler.LoanHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	// SessionGuard protects every route except login and session state.
	// Nil leaves them open.
	SessionGuard func(http.Handler) http.Handler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// LoginLimiter throttles POST /api/v1/session when set.
	LoginLimiter *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Session
		login := http.Handler(http.HandlerFunc(cfg.SessionHandler.Login))
		if cfg.LoginLimiter != nil {
			login = cfg.LoginLimiter.Limit(login)
		}
		r.Method(http.MethodPost, "/session", login)
		r.Get("/session", cfg.SessionHandler.State)

		r.Group(func(r chi.Router) {
			if cfg.SessionGuard != nil {
				r.Use(cfg.SessionGuard)
			}

			r.Delete("/session", cfg.SessionHandler.Logout)

			// Account
			r.Get("/account/movements", cfg.AccountHandler.Movements)
			r.Get("/account/summary", cfg.AccountHandler.Summary)
			r.Post("/account/close", cfg.AccountHandler.Close)

			// Transfers and loans
			r.Post("/transfers", cfg.TransferHandler.Create)
			r.Post("/loans", cfg.LoanHandler.Request)

			// Ledger
			r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)
		})
	})

	return r
}
