// Package metrics holds the Prometheus collectors for pipeline runs.
// A nil *Metrics is valid; every method is then a no-op.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is one registry with the georisk collectors.
type Metrics struct {
	registry *prometheus.Registry

	connectorFetch *prometheus.CounterVec
	events         *prometheus.CounterVec
	providerCalls  *prometheus.CounterVec
	synthesis      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastSuccess    prometheus.Gauge
	riskIndex      prometheus.Gauge
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.connectorFetch = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "georisk",
		Name:      "connector_fetch_total",
		Help:      "Connector fetches by channel and result",
	}, []string{"channel", "result"})
	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "georisk",
		Name:      "events_total",
		Help:      "Events surviving each pipeline stage",
	}, []string{"stage"})
	m.providerCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "georisk",
		Name:      "provider_calls_total",
		Help:      "Language model calls by provider and result (ok, error, invalid)",
	}, []string{"provider", "result"})
	m.synthesis = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "georisk",
		Name:      "synthesis_total",
		Help:      "Synthesis outcomes: generated, cached, fallback, failed",
	}, []string{"result"})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "georisk",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock time of a pipeline run",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	})
	m.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "georisk",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful run",
	})
	m.riskIndex = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "georisk",
		Name:      "risk_index",
		Help:      "Geopolitical risk index of the latest report",
	})

	m.registry.MustRegister(
		m.connectorFetch, m.events, m.providerCalls,
		m.synthesis, m.runDuration, m.lastSuccess, m.riskIndex,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ConnectorFetch counts one connector fetch.
func (m *Metrics) ConnectorFetch(channel string, err error) {
	if m == nil {
		return
	}
	m.connectorFetch.WithLabelValues(channel, result(err)).Inc()
}

// Events records how many events left a stage.
func (m *Metrics) Events(stage string, n int) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(stage).Add(float64(n))
}

// ProviderCall counts one provider call.
func (m *Metrics) ProviderCall(provider string, err error) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, result(err)).Inc()
}

// ProviderInvalid counts a call that returned a response which failed
// parsing or validation.
func (m *Metrics) ProviderInvalid(provider string) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, "invalid").Inc()
}

// Synthesis counts a synthesis outcome.
func (m *Metrics) Synthesis(outcome string) {
	if m == nil {
		return
	}
	m.synthesis.WithLabelValues(outcome).Inc()
}

// RunFinished observes a run's duration and, on success, its risk index.
func (m *Metrics) RunFinished(d time.Duration, index float64, err error) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
	if err == nil {
		m.lastSuccess.SetToCurrentTime()
		m.riskIndex.Set(index)
	}
}
