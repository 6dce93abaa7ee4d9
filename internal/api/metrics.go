package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glof_scoring_runs_total",
		Help: "Scoring runs started.",
	})
	runsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glof_scoring_runs_failed_total",
		Help: "Scoring runs that ended in a fatal engine error.",
	})
	runsInconsistent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glof_scoring_runs_inconsistent_total",
		Help: "Completed runs whose judgment matrix exceeded the CR threshold.",
	})
	lakesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glof_lakes_registered_total",
		Help: "Lakes added to the inventory.",
	})
)
