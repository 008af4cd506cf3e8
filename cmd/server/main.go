package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/bankist/internal/adapter/http"
	"github.com/iho/bankist/internal/adapter/http/handler"
	"github.com/iho/bankist/internal/adapter/http/middleware"
	"github.com/iho/bankist/internal/adapter/repository/memory"
	redisRepo "github.com/iho/bankist/internal/adapter/repository/redis"
	"github.com/iho/bankist/internal/infrastructure/auth"
	"github.com/iho/bankist/internal/infrastructure/config"
	"github.com/iho/bankist/internal/infrastructure/eventpublisher"
	"github.com/iho/bankist/internal/infrastructure/logger"
	"github.com/iho/bankist/internal/infrastructure/metrics"
	"github.com/iho/bankist/internal/infrastructure/redis"
	"github.com/iho/bankist/internal/infrastructure/seed"
	"github.com/iho/bankist/internal/usecase"
)

const housekeepingInterval = time.Minute

// app is the wired process: router plus the background pieces that need
// starting and stopping.
type app struct {
	router      http.Handler
	session     *usecase.Session
	loans       *usecase.LoanUseCase
	outbox      *memory.OutboxRepository
	publisher   *eventpublisher.EventPublisher
	limiter     *middleware.RateLimiter
	redisClient *goredis.Client
	logger      zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = a.publisher.Start(bgCtx)
	}()
	go func() {
		defer wg.Done()
		a.housekeeping(bgCtx, housekeepingInterval)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			cancelBackground()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Ending the session discards pending loans, which writes their events.
	a.session.Logout()
	a.loans.Wait()

	cancelBackground()
	wg.Wait()

	if err := a.publisher.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush outbox")
	}

	log.Info().Msg("server stopped")
	return nil
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return nil, errors.New("AUTH_ENABLED requires JWT_SECRET")
	}

	m := metrics.New(reg)

	accountRepo := memory.NewAccountRepository()
	outboxRepo := memory.NewOutboxRepository()
	txManager := memory.NewTxManager()
	idGen := memory.NewULIDGenerator()
	pins := auth.NewPinHasher(cfg.PinHashCost)

	records, err := seed.LoadFile(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	accounts, err := seed.Apply(ctx, accountRepo, pins, idGen, records)
	if err != nil {
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	log.Info().Int("accounts", len(accounts)).Msg("accounts seeded")

	var redisClient *goredis.Client
	var idempotencyStore usecase.IdempotencyStore
	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		publisher = redisRepo.NewEventPublisher(redisClient, cfg.RedisEventsChannel)
	}

	session := usecase.NewSession(usecase.SessionConfig{
		Timeout:      cfg.SessionTimeout,
		TickInterval: cfg.SessionTickInterval,
	}, accountRepo, pins, idGen, log, m)
	session.OnForcedLogout(func(username string) {
		log.Info().Str("username", username).Msg("session timed out")
	})

	accountUC := usecase.NewAccountUseCase(session, txManager, accountRepo, outboxRepo, pins, idGen, log, m)
	transferUC := usecase.NewTransferUseCase(session, txManager, accountRepo, outboxRepo, idGen, log, m)
	loanUC := usecase.NewLoanUseCase(session, txManager, accountRepo, outboxRepo, idGen, cfg.LoanReviewDelay, log, m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	var tokens handler.TokenIssuer
	var guard func(http.Handler) http.Handler
	if cfg.AuthEnabled {
		tokens = jwtManager
		guard = middleware.SessionGuard(jwtManager, session)
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		SessionHandler:   handler.NewSessionHandler(session, tokens),
		AccountHandler:   handler.NewAccountHandler(accountUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		LoanHandler:      handler.NewLoanHandler(loanUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(redisClient),
		Logger:           log,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		SessionGuard:     guard,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		LoginLimiter:     limiter,
	})

	return &app{
		router:  router,
		session: session,
		loans:   loanUC,
		outbox:  outboxRepo,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisher,
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.EventBatchSize,
			Interval:   cfg.EventPublishInterval,
		}),
		limiter:     limiter,
		redisClient: redisClient,
		logger:      log,
	}, nil
}

// housekeeping drops published outbox events and idle login limiters.
func (a *app) housekeeping(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx, every)
		}
	}
}

func (a *app) sweep(ctx context.Context, age time.Duration) {
	if err := a.outbox.DeletePublished(ctx, time.Now().UTC().Add(-age)); err != nil {
		a.logger.Error().Err(err).Msg("failed to delete published events")
	}
	if dropped := a.limiter.Sweep(age); dropped > 0 {
		a.logger.Debug().Int("dropped", dropped).Msg("idle login limiters dropped")
	}
}

func (a *app) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
