package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hbnb"

// Save outcomes.
const (
	SaveOK    = "ok"
	SaveError = "error"
)

// Metrics collects command and store counters.
// It satisfies console.Recorder and storage.SaveObserver.
type Metrics struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	saves    *prometheus.CounterVec
}

// MetricsOption configures Metrics.
type MetricsOption func(*Metrics)

// WithObjectGauge exports the number of stored objects, read from count on scrape.
func WithObjectGauge(count func() int) MetricsOption {
	return func(m *Metrics) {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "objects",
				Help:      "Number of objects currently held by the store.",
			},
			func() float64 { return float64(count()) },
		))
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() MetricsOption {
	return func(m *Metrics) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Console commands dispatched, by command and outcome.",
			},
			[]string{"command", "outcome"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_saves_total",
				Help:      "Store flushes, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.commands, m.saves)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ObserveCommand counts one dispatched command. Unknown commands are folded into a
// single label value to keep cardinality bounded.
func (m *Metrics) ObserveCommand(command, outcome string) {
	if outcome == "unknown" || command == "" {
		command = "unknown"
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// ObserveSave counts one store flush.
func (m *Metrics) ObserveSave(err error) {
	outcome := SaveOK
	if err != nil {
		outcome = SaveError
	}
	m.saves.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
