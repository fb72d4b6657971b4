// Package metrics exposes Prometheus collectors for the HTTP surface and
// the user store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "userdesk"

// Metrics holds the collectors and the registry they are registered with
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOpsTotal   *prometheus.CounterVec
	demoMode        prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		storeOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "User store operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		demoMode: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "demo_mode",
				Help:      "1 when the process runs without a backend",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.storeOpsTotal,
		m.demoMode,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStoreOp records a store call; result is "ok" or an error kind
func (m *Metrics) ObserveStoreOp(operation, result string) {
	m.storeOpsTotal.WithLabelValues(operation, result).Inc()
}

// SetDemoMode sets the demo mode gauge
func (m *Metrics) SetDemoMode(demo bool) {
	if demo {
		m.demoMode.Set(1)
		return
	}
	m.demoMode.Set(0)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
