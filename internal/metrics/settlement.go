// Package metrics exposes Prometheus instrumentation for the settlement engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "racha"

// Computation outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInconsistent = "inconsistent"
	OutcomeFatal        = "fatal"
	OutcomeError        = "error"
)

// SettlementMetrics records engine runs and status marks.
type SettlementMetrics struct {
	computations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	transfers    *prometheus.HistogramVec
	marks        *prometheus.CounterVec
	pruned       prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computations_total",
		Help:      "Balance and suggestion computations by view and outcome.",
	}, []string{"view", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "computation_duration_seconds",
		Help:      "Duration of balance and suggestion computations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"view"})
	transfers := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "suggested_transfers",
		Help:      "Number of transfers suggested per computation.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}, []string{"view"})
	marks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_marks_total",
		Help:      "Suggestion status changes by action.",
	}, []string{"action"})
	pruned := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_confirmations_pruned_total",
		Help:      "Persisted confirmations discarded after their suggestion disappeared or changed.",
	})
	reg.MustRegister(computations, duration, transfers, marks, pruned)
	return &SettlementMetrics{
		computations: computations,
		duration:     duration,
		transfers:    transfers,
		marks:        marks,
		pruned:       pruned,
	}
}

// ObserveComputation records one engine run for the given view
// ("balances", "INDIVIDUAL" or "GROUP").
func (m *SettlementMetrics) ObserveComputation(view, outcome string, d time.Duration) {
	if m == nil || m.computations == nil {
		return
	}
	view = normalizeLabel(view)
	m.computations.WithLabelValues(view, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(view).Observe(d.Seconds())
}

// ObserveTransfers records how many transfers a suggestion run produced.
func (m *SettlementMetrics) ObserveTransfers(view string, n int) {
	if m == nil || m.transfers == nil {
		return
	}
	m.transfers.WithLabelValues(normalizeLabel(view)).Observe(float64(n))
}

// IncMark counts a paid, confirmed or cleared action.
func (m *SettlementMetrics) IncMark(action string) {
	if m == nil || m.marks == nil {
		return
	}
	m.marks.WithLabelValues(normalizeLabel(action)).Inc()
}

// AddPruned counts discarded stale confirmations.
func (m *SettlementMetrics) AddPruned(n int) {
	if m == nil || m.pruned == nil || n <= 0 {
		return
	}
	m.pruned.Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
