package data

import (
	"net/http"

	"HotelGateway/pkg/breaker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "hotel_gateway"

// Loyalty job outcomes.
const (
	JobEnqueued  = "enqueued"
	JobSucceeded = "succeeded"
	JobRetried   = "retried"
	JobExpired   = "expired"
)

// Metrics holds the gateway's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	BreakerState       *prometheus.GaugeVec
	BreakerTransitions *prometheus.CounterVec
	DownstreamCalls    *prometheus.CounterVec
	LoyaltyJobs        *prometheus.CounterVec
	LoyaltyQueueDepth  prometheus.Gauge
	Incidents          *prometheus.CounterVec
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "circuit_breaker_state",
				Help:      "Current circuit breaker state (0=allowing, 1=probing, 2=blocking)",
			},
			[]string{"name"},
		),
		BreakerTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "circuit_breaker_transitions_total",
				Help:      "Total number of circuit breaker state transitions",
			},
			[]string{"name", "to"},
		),
		DownstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "downstream_calls_total",
				Help:      "Total number of downstream calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		LoyaltyJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "loyalty_jobs_total",
				Help:      "Total number of loyalty counter jobs by outcome",
			},
			[]string{"outcome"},
		),
		LoyaltyQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "loyalty_queue_depth",
				Help:      "Number of loyalty counter jobs waiting in the queue",
			},
		),
		Incidents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "saga_incidents_total",
				Help:      "Total number of recorded saga incidents by kind",
			},
			[]string{"kind"},
		),
	}
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBreaker records a breaker transition.
func (m *Metrics) ObserveBreaker(name string, to breaker.State) {
	m.BreakerState.WithLabelValues(name).Set(float64(to))
	m.BreakerTransitions.WithLabelValues(name, to.String()).Inc()
}

// ObserveCall records the outcome of one downstream call.
func (m *Metrics) ObserveCall(operation string, err error) {
	outcome := "success"
	switch {
	case isBreakerOpen(err):
		outcome = "rejected"
	case err != nil:
		outcome = "failure"
	}
	m.DownstreamCalls.WithLabelValues(operation, outcome).Inc()
}

// ObserveJob counts a loyalty job outcome.
func (m *Metrics) ObserveJob(outcome string) {
	m.LoyaltyJobs.WithLabelValues(outcome).Inc()
}

// SetQueueDepth publishes the pending loyalty job count.
func (m *Metrics) SetQueueDepth(n int64) {
	m.LoyaltyQueueDepth.Set(float64(n))
}

// ObserveIncident counts a recorded incident.
func (m *Metrics) ObserveIncident(kind string) {
	m.Incidents.WithLabelValues(kind).Inc()
}
