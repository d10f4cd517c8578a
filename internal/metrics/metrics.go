// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the application counters. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry setup.
type Metrics struct {
	AuthEvents   *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a private registry with the Go and process collectors plus
// the application counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cinematch_auth_events_total",
				Help: "Authentication events by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cinematch_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		registry: reg,
	}
	reg.MustRegister(m.AuthEvents)
	reg.MustRegister(m.HTTPRequests)
	return m
}

// AuthEvent increments the auth counter, e.g. ("login", "invalid_credentials").
func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, outcome).Inc()
}

// HTTPRequest increments the request counter.
func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
