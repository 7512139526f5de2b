// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RelayAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formqa_relay_attempts_total",
			Help: "Document fetch attempts per relay and outcome",
		},
		[]string{"relay", "outcome"},
	)

	RelayAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "formqa_relay_attempt_duration_seconds",
			Help: "Duration of a single relay attempt in seconds",
		},
		[]string{"relay"},
	)

	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formqa_extraction_failures_total",
			Help: "Schema extraction failures by error code",
		},
		[]string{"error_code"},
	)

	RecordsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formqa_records_generated_total",
			Help: "Total number of synthetic records generated",
		},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formqa_deliveries_total",
			Help: "Delivery attempts per target kind and outcome",
		},
		[]string{"target", "outcome"},
	)

	DeliveriesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "formqa_sink_deliveries_in_flight",
			Help: "Sink deliveries dispatched but not yet finished",
		},
	)
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeDenied   = "denied"
	OutcomeCacheHit = "cache_hit"
)
