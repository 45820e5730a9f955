package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the Prometheus instruments of the scanner and tracker.
type Recorder struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	outcomes      *prometheus.CounterVec
	candidates    *prometheus.GaugeVec
	openPositions prometheus.Gauge
	transitions   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a Recorder on its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketscout",
			Name:      "cycles_total",
			Help:      "Total number of completed refresh cycles",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marketscout",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of refresh cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketscout",
			Subsystem: "scanner",
			Name:      "outcomes_total",
			Help:      "Per-instrument scan outcomes",
		}, []string{"outcome"}),
		candidates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "marketscout",
			Subsystem: "scanner",
			Name:      "candidates",
			Help:      "Candidates in the last cycle by decision",
		}, []string{"decision"}),
		openPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marketscout",
			Subsystem: "positions",
			Name:      "open",
			Help:      "Number of open positions",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketscout",
			Subsystem: "positions",
			Name:      "transitions_total",
			Help:      "Position status transitions",
		}, []string{"to"}),
		lastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "marketscout",
			Name:      "last_price",
			Help:      "Last scanned price for a symbol",
		}, []string{"symbol"}),
	}
	reg.MustRegister(r.cycles, r.cycleDuration, r.outcomes, r.candidates,
		r.openPositions, r.transitions, r.lastPrice)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordCycle records a completed cycle.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cycles.Inc()
	r.cycleDuration.Observe(seconds)
}

// RecordOutcomes adds n instruments with the given outcome.
func (r *Recorder) RecordOutcomes(outcome string, n int) {
	r.outcomes.WithLabelValues(outcome).Add(float64(n))
}

// SetCandidates replaces the per-decision candidate counts.
func (r *Recorder) SetCandidates(byDecision map[string]int) {
	r.candidates.Reset()
	for d, n := range byDecision {
		r.candidates.WithLabelValues(d).Set(float64(n))
	}
}

// SetOpenPositions records the number of open positions.
func (r *Recorder) SetOpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

// RecordTransition counts a position status change.
func (r *Recorder) RecordTransition(to string) {
	r.transitions.WithLabelValues(to).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
