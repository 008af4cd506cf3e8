package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Session metrics
	LoginAttempts  *prometheus.CounterVec
	ForcedLogouts  prometheus.Counter
	ActiveSessions prometheus.Gauge

	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferAmount     prometheus.Histogram

	// Loan metrics
	LoansRequested prometheus.Counter
	LoansApproved  prometheus.Counter
	LoansDiscarded prometheus.Counter

	// Account metrics
	AccountsClosed prometheus.Counter

	// Rejected operations by operation and error code
	OperationsRejected *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_login_attempts_total",
				Help: "Total login attempts by status",
			},
			[]string{"status"},
		),
		ForcedLogouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankist_forced_logouts_total",
			Help: "Sessions ended by the idle countdown",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bankist_active_sessions",
			Help: "Current number of active sessions",
		}),

		TransfersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankist_transfers_completed_total",
			Help: "Total number of completed transfers",
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankist_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		LoansRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankist_loans_requested_total",
			Help: "Loan requests accepted for review",
		}),
		LoansApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankist_loans_approved_total",
			Help: "Loans credited after review",
		}),
		LoansDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankist_loans_discarded_total",
			Help: "Loans dropped because the session ended before review",
		}),

		AccountsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankist_accounts_closed_total",
			Help: "Total number of closed accounts",
		}),

		OperationsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_operations_rejected_total",
				Help: "Rejected operations by operation and reason",
			},
			[]string{"operation", "reason"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankist_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_events_published_total",
				Help: "Outbox events handed to the publisher",
			},
			[]string{"event_type", "status"},
		),
	}
}

// Reject counts a rejected operation. Safe on a nil receiver.
func (m *Metrics) Reject(operation, reason string) {
	if m == nil {
		return
	}
	m.OperationsRejected.WithLabelValues(operation, reason).Inc()
}
