// Package metrics exposes Prometheus instrumentation for upstream calls and
// dashboard refreshes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	refreshes        *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewstock",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the Brewfather API by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brewstock",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of Brewfather API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewstock",
			Name:      "refresh_total",
			Help:      "Dashboard refresh attempts by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamRequests,
		m.upstreamDuration,
		m.refreshes,
	)
	return m
}

// ObserveUpstream records one upstream request. code is 0 for transport errors.
func (m *Metrics) ObserveUpstream(endpoint string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveRefresh records a refresh outcome.
func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
