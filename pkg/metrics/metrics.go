package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LifecycleTransitions *prometheus.CounterVec
	PaymentAttempts      *prometheus.CounterVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subhub_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LifecycleTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subhub_subscription_transitions_total",
				Help: "Subscription lifecycle operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		PaymentAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subhub_payment_attempts_total",
				Help: "Payment captures by method and final status",
			},
			[]string{"method", "status"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LifecycleTransitions,
		m.PaymentAttempts,
	)

	return m
}

// NewNop returns metrics bound to a private registry, handy in tests.
func NewNop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func (m *Metrics) RecordTransition(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.LifecycleTransitions.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordPayment(method, status string) {
	if m == nil {
		return
	}
	m.PaymentAttempts.WithLabelValues(method, status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
