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

	MatchingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_runs_total",
			Help: "Matching runs by final status and error code",
		},
		[]string{"status", "error_code"},
	)

	MatchingRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_run_duration_seconds",
			Help:    "Wall-clock duration of matching runs",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	MatchingCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_total",
			Help: "Candidates seen by matching runs, by outcome",
		},
		[]string{"outcome"},
	)

	MatchingRecommendations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_recommendations",
			Help:    "Number of recommendations returned per completed run",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_events_published_total",
			Help: "Matching completed events by channel and result",
		},
		[]string{"channel", "result"},
	)

	ScoringConfigCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_config_cache_total",
			Help: "Scoring configuration lookups by cache tier and result",
		},
		[]string{"tier", "result"},
	)
)

// Candidate outcome labels.
const (
	OutcomeRecommended    = "recommended"
	OutcomeExcluded       = "excluded"
	OutcomeBelowThreshold = "below_threshold"
	OutcomeTruncated      = "truncated"
)
