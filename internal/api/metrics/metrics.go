// Package metrics defines and registers all custom Prometheus metrics for the
// civic issues API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civic"

// ── Issue metrics ─────────────────────────────────────────────────────────────

// IssuesCreatedTotal counts newly reported issues.
// Label:
//   - category: "Road", "Water", "Sanitation", "Electricity" or "Other"
var IssuesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_created_total",
		Help:      "Total number of issues reported, by category.",
	},
	[]string{"category"},
)

// IssuesDeletedTotal counts issues withdrawn by their creator.
var IssuesDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_deleted_total",
		Help:      "Total number of pending issues deleted by their creator.",
	},
)

// VotesTotal counts vote mutations.
// Label:
//   - action: "cast" or "retract"
var VotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Total number of votes cast or retracted.",
	},
	[]string{"action"},
)

// ── Rate limiter metrics ──────────────────────────────────────────────────────

// RateLimitDecisionsTotal counts issue creation admission decisions.
// Label:
//   - result: "allowed", "blocked" or "error"
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Total number of issue creation rate limit checks, by result.",
	},
	[]string{"result"},
)

// ── Score metrics ─────────────────────────────────────────────────────────────

// ScoreReconciliationsTotal counts score reconciliation outcomes.
// Label:
//   - result: "clean" (stored fields were current), "drift" (fields rewritten),
//     "conflict" (compare-and-set retries exhausted) or "error"
var ScoreReconciliationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_reconciliations_total",
		Help:      "Total number of score reconciliations, by result.",
	},
	[]string{"result"},
)

// ScoreReconcileDuration measures a single reconciliation end-to-end.
var ScoreReconcileDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_reconcile_duration_seconds",
		Help:      "Duration of a score reconciliation including ledger counts.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Rescore metrics ───────────────────────────────────────────────────────────

// RescoreQueueDepth tracks pending bulk reconciliations per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RescoreQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rescore_queue_depth",
		Help:      "Current number of user rescores pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// RescoreDroppedTotal counts user ids discarded because a worker channel was full.
var RescoreDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rescore_dropped_total",
		Help:      "Total number of user rescores dropped on a full worker queue.",
	},
)
