package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/bankist/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		route      string
		statusCode int
	}{
		{
			name:       "matched route",
			method:     http.MethodPost,
			path:       "/api/v1/transfers",
			route:      "/api/v1/transfers",
			statusCode: http.StatusCreated,
		},
		{
			name:       "unmatched path collapses",
			method:     http.MethodGet,
			path:       "/no/such/thing",
			route:      "unmatched",
			statusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(Metrics(m))
			r.Post("/api/v1/transfers", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			if rec.Code != tc.statusCode {
				t.Fatalf("expected status %d, got %d", tc.statusCode, rec.Code)
			}

			got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(tc.method, tc.route, strconv.Itoa(tc.statusCode)))
			if got != 1 {
				t.Fatalf("expected request counter 1 for %s, got %v", tc.route, got)
			}
			if n := testutil.CollectAndCount(m.HTTPDuration); n != 1 {
				t.Fatalf("expected one duration series, got %d", n)
			}
		})
	}
}
