package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the workflow collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	rejections *prometheus.CounterVec
	busy       prometheus.Gauge
	duration   prometheus.Histogram
}

// New registers the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stillreel_runs_total",
			Help: "Finished conversions by outcome and failing step.",
		}, []string{"outcome", "step"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stillreel_rejections_total",
			Help: "CreateVideo calls refused before reaching the engine.",
		}, []string{"reason"}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stillreel_busy",
			Help: "1 while a conversion is running.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stillreel_run_duration_seconds",
			Help:    "Wall time of conversions, successful or not.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
	}
	m.registry.MustRegister(
		m.runs, m.rejections, m.busy, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RunFinished(outcome, step string, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome, step).Inc()
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetBusy(busy bool) {
	if m == nil {
		return
	}
	if busy {
		m.busy.Set(1)
	} else {
		m.busy.Set(0)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
