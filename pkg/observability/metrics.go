package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Storage metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrorsTotal       *prometheus.CounterVec

	// Auth metrics
	LoginsTotal        *prometheus.CounterVec
	RegistrationsTotal prometheus.Counter
	TokensIssuedTotal  prometheus.Counter

	// Discipleship metrics
	MilestoneUpdatesTotal  *prometheus.CounterVec
	FirstStepUpdatesTotal  *prometheus.CounterVec
	JourneysCompletedTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics on a private
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shepherd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shepherd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shepherd_storage_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"operation", "entity"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shepherd_storage_operation_duration_seconds",
				Help:    "Storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "entity"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shepherd_storage_errors_total",
				Help: "Total number of storage errors",
			},
			[]string{"operation", "entity"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shepherd_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"outcome"},
		),
		RegistrationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shepherd_registrations_total",
				Help: "Total number of successful registrations",
			},
		),
		TokensIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shepherd_tokens_issued_total",
				Help: "Total number of JWTs issued",
			},
		),
		MilestoneUpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shepherd_milestone_updates_total",
				Help: "Total number of New Birth milestone updates",
			},
			[]string{"milestone"},
		),
		FirstStepUpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shepherd_first_step_updates_total",
				Help: "Total number of First Steps updates",
			},
			[]string{"step"},
		),
		JourneysCompletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shepherd_journeys_completed_total",
				Help: "Total number of New Birth journeys completed",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
		m.StorageErrorsTotal,
		m.LoginsTotal,
		m.RegistrationsTotal,
		m.TokensIssuedTotal,
		m.MilestoneUpdatesTotal,
		m.FirstStepUpdatesTotal,
		m.JourneysCompletedTotal,
	)

	return m
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStorageOperation records one storage call.
func (m *Metrics) ObserveStorageOperation(operation, entity string, start time.Time, err error) {
	m.StorageOperationsTotal.WithLabelValues(operation, entity).Inc()
	m.StorageOperationDuration.WithLabelValues(operation, entity).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StorageErrorsTotal.WithLabelValues(operation, entity).Inc()
	}
}
