// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search orchestrations by outcome",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Wall-clock duration of a search orchestration",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
	)

	SearchSourceResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_source_results",
			Help:    "Number of raw results returned per source call",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"source"},
	)

	SearchSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_source_failures_total",
			Help: "Source fetches that failed and were replaced by an empty list",
		},
		[]string{"source", "reason"},
	)

	SearchExpansionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_expansion_fallbacks_total",
			Help: "Searches that fell back to the original query",
		},
		[]string{"reason"},
	)

	WebSearchQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websearch_quota_remaining",
			Help: "Remaining web search API calls in the current quota window",
		},
	)
)
