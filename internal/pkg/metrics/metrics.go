package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay labels used with RecordRelayFailure
const (
	RelayStorage = "storage"
	RelayMail    = "mail"
)

// Metrics holds the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RelayFailures   *prometheus.CounterVec
}

// New creates a private registry with the Go/process collectors plus the
// application metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edutech_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edutech_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RelayFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edutech_relay_failures_total",
				Help: "Failed calls to external storage or mail transports",
			},
			[]string{"relay"},
		),
	}
	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.RelayFailures)
	return m
}

// RecordRequest counts a finished HTTP request
func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordRelayFailure counts a failed upload or mail dispatch
func (m *Metrics) RecordRelayFailure(relay string) {
	if m == nil {
		return
	}
	m.RelayFailures.WithLabelValues(relay).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
