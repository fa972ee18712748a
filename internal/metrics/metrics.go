package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RecalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_recalculations_total",
			Help: "Snapshot recalculations by result (success, failure, retry)",
		},
		[]string{"result"},
	)

	RecalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finance_recalculation_duration_seconds",
			Help:    "Time spent rebuilding one event snapshot",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	BatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_batch_runs_total",
			Help: "Batch recalculation runs by outcome (complete, partial, cancelled)",
		},
		[]string{"outcome"},
	)

	SnapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finance_snapshot_cache_hits_total",
			Help: "Snapshot reads served from Redis",
		},
	)

	SnapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finance_snapshot_cache_misses_total",
			Help: "Snapshot reads that fell through to Postgres or a recalculation",
		},
	)
)
