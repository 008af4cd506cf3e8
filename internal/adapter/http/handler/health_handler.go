package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler. redisClient is nil when
// Redis is disabled.
func NewHealthHandler(redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{redisClient: redisClient}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.redisClient == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"redis":  "disabled",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "redis_unhealthy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"redis":  "ok",
	})
}
