package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankist/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a replayed response.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	processingMarker      = "processing"
)

// storedResponse is what is kept under an idempotency key once the first
// request has finished.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// IdempotencyMiddleware replays the response of a POST that carried the
// same Idempotency-Key for the same route.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking. Only successful
// responses are stored; a failed request releases its key so it can be
// retried.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = r.Method + " " + r.URL.Path + " " + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "internal", "idempotency check failed")
			return
		}

		if exists {
			if string(cached) == processingMarker {
				writeError(w, http.StatusConflict, "request_in_progress", "a request with this idempotency key is still running")
				return
			}

			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err != nil {
				m.logger.Error().Err(err).Msg("stored idempotent response unreadable")
				writeError(w, http.StatusInternalServerError, "internal", "idempotency check failed")
				return
			}

			w.Header().Set(IdempotencyReplayHeader, "true")
			if len(stored.Body) > 0 {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(stored.Status)
			w.Write(stored.Body)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Recorded even if the client has gone away.
		ctx := context.WithoutCancel(r.Context())

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			if err := m.store.Release(ctx, key); err != nil {
				m.logger.Warn().Err(err).Msg("idempotency key release failed")
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status: recorder.statusCode,
			Body:   bodyOrNil(recorder.body.Bytes()),
		})
		if err != nil {
			m.logger.Warn().Err(err).Msg("idempotent response not stored")
			return
		}
		if err := m.store.Update(ctx, key, payload, m.ttl); err != nil {
			m.logger.Warn().Err(err).Msg("idempotent response not stored")
		}
	})
}

func bodyOrNil(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return b
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
