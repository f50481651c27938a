package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankline_runs_total",
		Help: "Completed ranking pipeline runs.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rankline_run_duration_seconds",
		Help:    "Wall time of a full pipeline run.",
		Buckets: prometheus.DefBuckets,
	})
	candidatesFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankline_candidates_filtered_total",
		Help: "Candidates dropped, by filter id.",
	}, []string{"filter"})
	analysesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankline_analyses_total",
		Help: "Single-post analyses served.",
	})
)
