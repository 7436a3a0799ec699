// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// MailEnqueued counts mail jobs enqueued by template.
	MailEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_mail_enqueued_total",
		Help: "Total number of mail jobs enqueued",
	}, []string{"template"})

	// MailDelivered counts mail jobs delivered or failed by outcome.
	MailDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_mail_delivered_total",
		Help: "Total number of mail jobs processed by the worker",
	}, []string{"outcome"})

	// TokensIssued counts issued tokens by purpose.
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_tokens_issued_total",
		Help: "Total number of signed tokens issued",
	}, []string{"purpose"})

	// TokensRejected counts failed token verifications by purpose.
	TokensRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_tokens_rejected_total",
		Help: "Total number of token verifications that failed",
	}, []string{"purpose"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
