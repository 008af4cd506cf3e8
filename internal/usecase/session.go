package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/metrics"
)

// SessionState is either logged in or logged out.
type SessionState string

const (
	StateLoggedOut SessionState = "logged_out"
	StateLoggedIn  SessionState = "logged_in"
)

// SessionInfo is a point-in-time view of the session.
type SessionInfo struct {
	State            SessionState
	ID               string
	Account          *domain.Account
	SecondsRemaining int
}

// SessionConfig configures the idle countdown.
type SessionConfig struct {
	Timeout time.Duration
	// TickInterval drives the internal countdown. Zero disables it and
	// leaves ticking to the caller.
	TickInterval time.Duration
}

// Session tracks the single authenticated account of the process and its
// idle countdown. Lock order: registry transaction before s.mu; s.mu is never
// held while calling the registry or listeners.
type Session struct {
	accounts AccountRepository
	pins     PinVerifier
	idGen    IDGenerator
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	timeout      int
	tickInterval time.Duration

	mu            sync.Mutex
	id            string
	account       *domain.Account
	remaining     int
	stopCountdown context.CancelFunc

	listenersMu    sync.Mutex
	onLogout       []func(username string)
	onForcedLogout []func(username string)
}

// NewSession creates a logged-out session.
func NewSession(
	cfg SessionConfig,
	accounts AccountRepository,
	pins PinVerifier,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *Session {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSessionTimeout
	}

	return &Session{
		accounts:     accounts,
		pins:         pins,
		idGen:        idGen,
		logger:       logger,
		metrics:      metrics,
		timeout:      int(cfg.Timeout / time.Second),
		tickInterval: cfg.TickInterval,
	}
}

// Login authenticates username and pin and starts a fresh countdown. Any
// previous session is ended first.
func (s *Session) Login(ctx context.Context, username string, pin int) (*SessionInfo, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
		s.loginFailed(username, "unknown_username")
		return nil, domain.ErrInvalidCredentials
	}

	if !s.pins.VerifyPin(account.PinHash, pin) {
		s.loginFailed(username, "wrong_pin")
		return nil, domain.ErrInvalidCredentials
	}

	s.mu.Lock()
	previous := s.endLocked()
	s.id = s.idGen.Generate()
	s.account = account
	s.remaining = s.timeout
	s.startCountdownLocked(s.id)
	info := s.infoLocked()
	s.mu.Unlock()

	if previous != "" {
		s.notify(previous, false)
	} else if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}

	// A close that removed the account after the lookup above ends this
	// session here, or through logoutUser if it commits after this check.
	if _, err := s.accounts.GetByUsername(ctx, username); err != nil {
		s.logoutIf(info.ID)
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
		s.loginFailed(username, "account_closed")
		return nil, domain.ErrInvalidCredentials
	}

	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	}

	s.logger.Info().
		Str("username", account.Username).
		Str("session_id", info.ID).
		Msg("login succeeded")

	return &info, nil
}

// Logout ends the session. Calling it while logged out does nothing.
func (s *Session) Logout() {
	s.logoutIf("")
}

// Tick decrements the countdown by one second. It returns true when this
// tick forced a logout.
func (s *Session) Tick() bool {
	s.mu.Lock()
	id := s.id
	s.mu.Unlock()

	if id == "" {
		return false
	}
	return s.tick(id)
}

// ResetTimer restores the full countdown without changing state.
func (s *Session) ResetTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		s.remaining = s.timeout
	}
}

// Info returns the current state.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

type sessionIDKey struct{}

// WithSessionID binds ctx to one login session. Operations run with the
// returned context fail with ErrNoActiveSession once that session has ended,
// even if another login has started since.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext returns the session ID bound by WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok
}

// Current returns the logged-in account and the session ID. When ctx is
// bound to a session, that session must still be the active one.
func (s *Session) Current(ctx context.Context) (*domain.Account, string, error) {
	bound, isBound := SessionIDFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id == "" || (isBound && bound != s.id) {
		return nil, "", domain.ErrNoActiveSession
	}
	return s.account, s.id, nil
}

// Holds reports whether the session with id is still active for username.
func (s *Session) Holds(id, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id != "" && s.id == id && s.account.Username == username
}

// OnForcedLogout registers fn to run when the countdown expires.
func (s *Session) OnForcedLogout(fn func(username string)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.onForcedLogout = append(s.onForcedLogout, fn)
}

// OnLogout registers fn to run on every transition to logged out, including
// forced logouts and replacement by a new login.
func (s *Session) OnLogout(fn func(username string)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// touch resets the countdown only if id is still the active session.
func (s *Session) touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id == id && id != "" {
		s.remaining = s.timeout
	}
}

// logoutIf ends the session when id is empty or still the active one.
func (s *Session) logoutIf(id string) {
	s.endWhen(func() bool { return id == "" || s.id == id })
}

// logoutUser ends the session if it belongs to username, whichever login
// started it.
func (s *Session) logoutUser(username string) {
	s.endWhen(func() bool { return s.account != nil && s.account.Username == username })
}

// endWhen ends the session if match, called under s.mu, reports true.
func (s *Session) endWhen(match func() bool) {
	s.mu.Lock()
	if !match() {
		s.mu.Unlock()
		return
	}
	username := s.endLocked()
	s.mu.Unlock()

	if username == "" {
		return
	}

	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	s.logger.Info().Str("username", username).Msg("logged out")
	s.notify(username, false)
}

func (s *Session) tick(id string) bool {
	s.mu.Lock()
	if s.id != id {
		s.mu.Unlock()
		return false
	}

	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}

	username := s.endLocked()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
		s.metrics.ForcedLogouts.Inc()
	}
	s.logger.Warn().Str("username", username).Msg("session expired, forcing logout")
	s.notify(username, true)
	return true
}

func (s *Session) startCountdownLocked(id string) {
	if s.tickInterval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCountdown = cancel

	go func() {
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.tick(id) {
					return
				}
			}
		}
	}()
}

// endLocked clears the session and returns the username that was logged in.
func (s *Session) endLocked() string {
	if s.id == "" {
		return ""
	}

	if s.stopCountdown != nil {
		s.stopCountdown()
		s.stopCountdown = nil
	}

	username := s.account.Username
	s.id = ""
	s.account = nil
	s.remaining = 0
	return username
}

func (s *Session) infoLocked() SessionInfo {
	if s.id == "" {
		return SessionInfo{State: StateLoggedOut}
	}
	return SessionInfo{
		State:            StateLoggedIn,
		ID:               s.id,
		Account:          s.account,
		SecondsRemaining: s.remaining,
	}
}

func (s *Session) notify(username string, forced bool) {
	s.listenersMu.Lock()
	logout := append([]func(string){}, s.onLogout...)
	forcedLogout := append([]func(string){}, s.onForcedLogout...)
	s.listenersMu.Unlock()

	for _, fn := range logout {
		fn(username)
	}
	if forced {
		for _, fn := range forcedLogout {
			fn(username)
		}
	}
}

func (s *Session) loginFailed(username, reason string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
	}
	s.logger.Warn().Str("username", username).Str("reason", reason).Msg("login failed")
}

// FormatRemaining renders seconds as mm:ss, the way the countdown is shown.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
