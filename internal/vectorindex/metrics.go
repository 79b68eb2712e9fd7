package vectorindex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsAdded counts documents indexed per collection.
	DocumentsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentd",
			Subsystem: "vectorindex",
			Name:      "documents_added_total",
			Help:      "Total number of documents added to the vector index",
		},
		[]string{"collection"},
	)

	// SearchDuration tracks nearest-neighbor search latency per collection.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intentd",
			Subsystem: "vectorindex",
			Name:      "search_duration_seconds",
			Help:      "Duration of vector index search operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// SearchesTotal counts search operations.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intentd",
			Subsystem: "vectorindex",
			Name:      "searches_total",
			Help:      "Total number of vector index search operations",
		},
		[]string{"collection"},
	)
)

// RecordAdd records a successful document batch insert.
func RecordAdd(collection string, count int) {
	DocumentsAdded.WithLabelValues(collection).Add(float64(count))
}

// ObserveSearch records a completed search and its latency.
func ObserveSearch(collection string, d time.Duration) {
	SearchesTotal.WithLabelValues(collection).Inc()
	SearchDuration.WithLabelValues(collection).Observe(d.Seconds())
}
