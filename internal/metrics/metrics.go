// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records authentication, authorization and HTTP metrics.
type Collector struct {
	authOutcomes  *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "electricite_auth_verifications_total",
			Help: "Bearer credential verifications by outcome.",
		}, []string{"outcome"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "electricite_authz_decisions_total",
			Help: "Authorization gate decisions by guard and decision.",
		}, []string{"guard", "decision"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "electricite_http_requests_total",
			Help: "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "electricite_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.authOutcomes,
		c.gateDecisions,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordAuthOutcome counts one credential verification.
func (c *Collector) RecordAuthOutcome(outcome string) {
	c.authOutcomes.WithLabelValues(outcome).Inc()
}

// RecordGateDecision counts one authorization decision.
func (c *Collector) RecordGateDecision(guard, decision string) {
	c.gateDecisions.WithLabelValues(guard, decision).Inc()
}

// RecordHTTPRequest counts a finished request and observes its latency.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
