// Package metrics exports search activity as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/tipindex/core"
	"github.com/poiesic/tipindex/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor is a search.Monitor recording Prometheus metrics. It holds no
// per-query state and is safe for concurrent searches.
type Monitor struct {
	searches   *prometheus.CounterVec
	phases     *prometheus.CounterVec
	candidates *prometheus.HistogramVec
	duration   prometheus.Histogram
	results    prometheus.Histogram
}

var _ search.Monitor = (*Monitor)(nil)

// NewMonitor creates a monitor and registers its collectors with reg.
// Collectors already registered under the same names are reused, so
// several engines may share one registry.
func NewMonitor(reg prometheus.Registerer, namespace string) (*Monitor, error) {
	m := &Monitor{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total searches by outcome.",
		}, []string{"outcome"}), // "hit" / "miss"
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "phases_total",
			Help:      "Retrieval phases run, by phase.",
		}, []string{"phase"}), // "exact" / "partial" / "raw"
		candidates: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "phase_candidates",
			Help:      "Candidate count after each retrieval phase.",
			Buckets:   []float64{0, 1, 5, 10, 25, 100, 500},
		}, []string{"phase"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search duration in seconds.",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results",
			Help:      "Results returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 100, 500},
		}),
	}

	if reg == nil {
		return m, nil
	}
	if err := registerOrReuse(reg, &m.searches); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.phases); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.candidates); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

func (m *Monitor) Start(_ string) {}

func (m *Monitor) AfterExactMatch(candidates []core.ID) {
	m.observePhase("exact", candidates)
}

func (m *Monitor) AfterPartialMatch(candidates []core.ID) {
	m.observePhase("partial", candidates)
}

func (m *Monitor) AfterRawScan(candidates []core.ID) {
	m.observePhase("raw", candidates)
}

func (m *Monitor) observePhase(phase string, candidates []core.ID) {
	m.phases.WithLabelValues(phase).Inc()
	m.candidates.WithLabelValues(phase).Observe(float64(len(candidates)))
}

func (m *Monitor) Finish(results []core.ScoredTip, elapsed time.Duration) {
	outcome := "hit"
	if len(results) == 0 {
		outcome = "miss"
	}
	m.searches.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.results.Observe(float64(len(results)))
}
