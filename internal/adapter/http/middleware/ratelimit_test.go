package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_LimitsPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1111"); code != http.StatusOK {
			t.Fatalf("request %d within burst: got %d", i, code)
		}
	}
	if code := send("10.0.0.1:2222"); code != http.StatusTooManyRequests {
		t.Fatalf("expected same host on another port to be throttled, got %d", code)
	}
	if code := send("10.0.0.2:1111"); code != http.StatusOK {
		t.Fatalf("expected another client to pass, got %d", code)
	}
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(10 * time.Minute)
	rl.Allow("fresh")

	if dropped := rl.Sweep(5 * time.Minute); dropped != 1 {
		t.Fatalf("expected 1 limiter dropped, got %d", dropped)
	}
	if _, ok := rl.limiters["fresh"]; !ok {
		t.Fatalf("recent client must be kept")
	}

	if !rl.Allow("old") {
		t.Fatalf("a swept client starts with a full burst")
	}
}
