// Package metrics provides Prometheus metrics for the going service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cheltenham_going"

// Manager holds the service collectors on its own registry
type Manager struct {
	registry *prometheus.Registry

	adapterAttempts *prometheus.CounterVec
	adapterDuration *prometheus.HistogramVec
	resolutions     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// NewManager creates a manager with a fresh registry, including Go runtime
// and process collectors.
func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Manager{
		registry: reg,
		adapterAttempts: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "attempts_total",
			Help:      "Going source adapter invocations by outcome (data, empty, failed)",
		}, []string{"source", "status"}),
		adapterDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "duration_seconds",
			Help:      "Time spent fetching and parsing one going source",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		resolutions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Resolved going reports by winning source (none when pending)",
		}, []string{"source"}),
		cacheLookups: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result (hit, stale, miss)",
		}, []string{"result"}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint, method and status code",
		}, []string{"endpoint", "method", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method", "status_code"}),
	}
}

// RecordAdapterAttempt records one adapter invocation
func (m *Manager) RecordAdapterAttempt(source, status string, d time.Duration) {
	m.adapterAttempts.WithLabelValues(source, status).Inc()
	m.adapterDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordResolution records which source answered a resolution
func (m *Manager) RecordResolution(source string) {
	m.resolutions.WithLabelValues(source).Inc()
}

// RecordCacheLookup records a response cache lookup result
func (m *Manager) RecordCacheLookup(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records a served HTTP request
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(d.Seconds())
}

// Handler serves the manager's registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package-level functions using the global manager

// RecordAdapterAttempt records one adapter invocation on the global manager.
func RecordAdapterAttempt(source, status string, d time.Duration) {
	globalManager.RecordAdapterAttempt(source, status, d)
}

// RecordResolution records a resolution on the global manager.
func RecordResolution(source string) {
	globalManager.RecordResolution(source)
}

// RecordCacheLookup records a cache lookup on the global manager.
func RecordCacheLookup(result string) {
	globalManager.RecordCacheLookup(result)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, d)
}

// Handler serves the global registry.
func Handler() http.Handler {
	return globalManager.Handler()
}
