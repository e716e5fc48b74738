package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "panelfs"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Gateway metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Denials           *prometheus.CounterVec
	BulkItems         *prometheus.CounterVec
	RegistryCleanups  prometheus.Counter
	DrivesListed      prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),

		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Gateway operations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Gateway operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"kind"},
		),
		Denials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_denials_total",
				Help:      "Requests refused before reaching the filesystem",
			},
			[]string{"reason"},
		),
		BulkItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_items_total",
				Help:      "Items processed by bulk operations",
			},
			[]string{"kind", "outcome"},
		),
		RegistryCleanups: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "protected_cleanup_entries_total",
				Help:      "Protected folder entries removed after directory deletes",
			},
		),
		DrivesListed: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "drives_listed",
				Help:      "Volumes returned by the last drive enumeration",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)
	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, route).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))
}

// RecordOperation records a finished gateway operation
func (m *Metrics) RecordOperation(kind, outcome string, duration time.Duration) {
	m.Operations.WithLabelValues(kind, outcome).Inc()
	m.OperationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordDenial records a refused request
func (m *Metrics) RecordDenial(reason string) {
	m.Denials.WithLabelValues(reason).Inc()
}

// RecordBulk records per-item outcomes of a bulk operation
func (m *Metrics) RecordBulk(kind string, succeeded, failed int) {
	m.BulkItems.WithLabelValues(kind, "ok").Add(float64(succeeded))
	m.BulkItems.WithLabelValues(kind, "failed").Add(float64(failed))
}

// AddRegistryCleanups counts protected entries dropped by cleanup
func (m *Metrics) AddRegistryCleanups(n int) {
	m.RegistryCleanups.Add(float64(n))
}

// SetDrivesListed records the size of the last drive listing
func (m *Metrics) SetDrivesListed(n int) {
	m.DrivesListed.Set(float64(n))
}
