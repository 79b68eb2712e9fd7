package classifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts classification decisions by method and category.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentd",
			Subsystem: "classifier",
			Name:      "decisions_total",
			Help:      "Total classification decisions by resolution method and category",
		},
		[]string{"method", "category"},
	)

	// DecisionDuration tracks end-to-end classification latency by method.
	DecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intentd",
			Subsystem: "classifier",
			Name:      "decision_duration_seconds",
			Help:      "Duration of one classification by resolution method",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// DegradationsTotal counts stage failures the pipeline absorbed.
	DegradationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentd",
			Subsystem: "classifier",
			Name:      "degradations_total",
			Help:      "Total pipeline stage failures that degraded to the next stage",
		},
		[]string{"stage"},
	)
)

// ObserveDecision records one completed classification.
func ObserveDecision(method, category string, d time.Duration) {
	DecisionsTotal.WithLabelValues(method, category).Inc()
	DecisionDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordDegradation records a stage failure that the pipeline absorbed.
func RecordDegradation(stage string) {
	DegradationsTotal.WithLabelValues(stage).Inc()
}
