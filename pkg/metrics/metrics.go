// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BalanceRecomputes counts full ledger folds per group.
	BalanceRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_balance_recomputes_total",
		Help: "Number of full balance recomputations.",
	})

	// SkippedRecords counts integrity-broken records excluded from folds.
	SkippedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_skipped_records_total",
		Help: "Number of records skipped for data-integrity violations.",
	})

	// SettlementTransitions counts settlement resolutions by outcome.
	SettlementTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_settlement_transitions_total",
		Help: "Number of settlement status transitions.",
	}, []string{"to_status"})

	// StatusConflicts counts compare-and-set losses on settlement writes.
	StatusConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_settlement_status_conflicts_total",
		Help: "Number of settlement transitions lost to a concurrent writer.",
	})

	// StepUpRefusals counts confirmations refused for missing verification.
	StepUpRefusals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_step_up_refusals_total",
		Help: "Number of confirmations refused pending step-up verification.",
	})

	// SimplifyDuration observes debt-simplification latency.
	SimplifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "splitledger_simplify_duration_seconds",
		Help:    "Latency of greedy debt simplification.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
