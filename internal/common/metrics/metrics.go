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
)

var (
	// EngineResults counts orchestrator results by kind and where they came from.
	EngineResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbrew_engine_results_total",
			Help: "Results served by the engine, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbrew_cache_lookups_total",
			Help: "Cache lookups by kind and result (hit, miss, expired, error)",
		},
		[]string{"kind", "result"},
	)

	AdvisoryCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbrew_advisory_calls_total",
			Help: "Advisory service calls by kind and result",
		},
		[]string{"kind", "result"},
	)

	AdvisoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodbrew_advisory_duration_seconds",
			Help:    "Advisory service call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"kind"},
	)

	AnalyticsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbrew_analytics_dropped_total",
			Help: "Analytics records that could not be written",
		},
		[]string{"sink"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbrew_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)
)
