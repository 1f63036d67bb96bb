// Package metrics provides HTTP handler metrics for observability
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for HTTP handler operations
type HTTPMetrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Handler-specific metrics
	handlerOperationsTotal *prometheus.CounterVec
	handlerOperationErrors *prometheus.CounterVec

	// Authentication metrics
	authOperationsTotal *prometheus.CounterVec
	rateLimitedTotal    *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers new HTTP handler metrics
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"}, // path is the route template, e.g. /api/users/update_pin/:camera_id
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses",
			Buckets: prometheus.ExponentialBuckets(BucketStart64B, BucketFactor2, BucketCount15),
		},
		[]string{"method", "path"},
	)

	m.httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Number of HTTP requests currently being served",
	})

	m.handlerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_handler_operations_total",
			Help: "Total number of handler operations",
		},
		[]string{"handler", "status"},
	)

	m.handlerOperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_handler_operation_errors_total",
			Help: "Total number of handler operation errors by error category",
		},
		[]string{"handler", "category"},
	)

	m.authOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_auth_operations_total",
			Help: "Total number of authentication operations",
		},
		[]string{"operation", "status"}, // operation: register, login, change_password
	)

	m.rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
}

func (m *HTTPMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpResponseSize,
		m.httpInFlight,
		m.handlerOperationsTotal,
		m.handlerOperationErrors,
		m.authOperationsTotal,
		m.rateLimitedTotal,
	}
}

// Describe implements the Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordHTTPRequest records a completed HTTP request
func (m *HTTPMetrics) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordHTTPResponseSize records the size of an HTTP response
func (m *HTTPMetrics) RecordHTTPResponseSize(method, path string, sizeBytes int64) {
	m.httpResponseSize.WithLabelValues(method, path).Observe(float64(sizeBytes))
}

// RequestStarted increments the in-flight gauge; call RequestFinished when done.
func (m *HTTPMetrics) RequestStarted() {
	m.httpInFlight.Inc()
}

// RequestFinished decrements the in-flight gauge
func (m *HTTPMetrics) RequestFinished() {
	m.httpInFlight.Dec()
}

// RecordHandlerOperation records a handler outcome
func (m *HTTPMetrics) RecordHandlerOperation(handler, status string) {
	m.handlerOperationsTotal.WithLabelValues(handler, status).Inc()
}

// RecordHandlerOperationError records a handler error by category
func (m *HTTPMetrics) RecordHandlerOperationError(handler, category string) {
	m.handlerOperationErrors.WithLabelValues(handler, category).Inc()
}

// RecordAuthOperation records an authentication operation
func (m *HTTPMetrics) RecordAuthOperation(operation, status string) {
	m.authOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *HTTPMetrics) RecordRateLimited(path string) {
	m.rateLimitedTotal.WithLabelValues(path).Inc()
}
