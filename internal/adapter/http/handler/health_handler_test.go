package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := NewHealthHandler(client)

	rec := httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with redis up, got %d", rec.Code)
	}

	mr.Close()

	rec = httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "redis_unhealthy" {
		t.Fatalf("unexpected error: %+v", resp)
	}
}

func TestHealthHandler_ReadinessWithoutRedis(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when redis is disabled, got %d", rec.Code)
	}
}
