// Package metrics defines the Prometheus collectors the block-driven
// evaluator and event ingester instrument themselves with (spec.md
// §4.5.4 "Log timing metrics per block").
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlockEvaluationDuration measures wall-clock time spent evaluating
	// every configured route for one head block.
	BlockEvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tsuki",
		Subsystem: "evaluator",
		Name:      "block_evaluation_seconds",
		Help:      "Time spent evaluating all configured routes for one head block.",
		Buckets:   prometheus.DefBuckets,
	})

	// RouteEvaluations counts route evaluations by outcome.
	RouteEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tsuki",
		Subsystem: "evaluator",
		Name:      "route_evaluations_total",
		Help:      "Route evaluations, partitioned by outcome.",
	}, []string{"outcome"})

	// SubmissionsTotal counts arb transaction submission attempts by
	// outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tsuki",
		Subsystem: "evaluator",
		Name:      "submissions_total",
		Help:      "Arb transaction submissions, partitioned by outcome.",
	}, []string{"outcome"})

	// ReserveUpdatesTotal counts Sync-event-driven reserve writes into
	// the pool matrix.
	ReserveUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tsuki",
		Subsystem: "ingester",
		Name:      "reserve_updates_total",
		Help:      "Total number of pool reserve updates applied from the sync log stream.",
	})

	// DecodeErrorsTotal counts decode failures for sync logs, never
	// fatal per spec.md §7.
	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tsuki",
		Subsystem: "ingester",
		Name:      "decode_errors_total",
		Help:      "Total number of sync log decode failures (skipped, not fatal).",
	})
)
