// Package metrics provides Prometheus metrics for the mock extension API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "halo_mock"

// Metrics owns a registry and every collector of one server instance.
// Separate instances never share state, so tests can run servers side by side.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration measures request latency by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInFlight tracks requests currently being served.
	HTTPRequestsInFlight prometheus.Gauge

	// RateLimitExceeded counts rejected requests.
	RateLimitExceeded prometheus.Counter

	// AuthFailures counts rejected credentials by scheme.
	AuthFailures *prometheus.CounterVec

	// StoreOperationDuration measures store calls by operation.
	StoreOperationDuration *prometheus.HistogramVec

	// StoreOperationsTotal counts store calls by operation and status.
	StoreOperationsTotal *prometheus.CounterVec

	// StoredObjects tracks the number of objects per resource.
	StoredObjects *prometheus.GaugeVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				// 1ms to 10s
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		RateLimitExceeded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_exceeded_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),
		AuthFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of rejected credentials",
			},
			[]string{"scheme"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				// 100µs to 1s
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"operation"},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"operation", "status"},
		),
		StoredObjects: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stored_objects",
				Help:      "Number of stored objects per resource",
			},
			[]string{"resource"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RateLimitExceeded,
		m.AuthFailures,
		m.StoreOperationDuration,
		m.StoreOperationsTotal,
		m.StoredObjects,
	)

	return m
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStore records one store operation. err decides the status label.
func (m *Metrics) ObserveStore(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
