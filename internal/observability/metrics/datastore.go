// Package metrics provides datastore metrics for observability
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for datastore operations
type DatastoreMetrics struct {
	registry *prometheus.Registry

	dbOperationsTotal      *prometheus.CounterVec
	dbOperationDuration    *prometheus.HistogramVec
	dbOperationErrorsTotal *prometheus.CounterVec

	// Snapshot reads feeding the summary engine
	snapshotRowsHist *prometheus.HistogramVec

	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"},
	)

	m.dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_db_operation_duration_seconds",
			Help:    "Time taken for database operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15), // 1ms to ~16s
		},
		[]string{"operation", "table"},
	)

	m.dbOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_operation_errors_total",
			Help: "Total number of database operation errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	m.snapshotRowsHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_snapshot_rows",
			Help:    "Number of rows read per user snapshot",
			Buckets: prometheus.ExponentialBuckets(1, BucketFactor2, BucketCount12),
		},
		[]string{"table"},
	)

	m.collectors = []prometheus.Collector{
		m.dbOperationsTotal,
		m.dbOperationDuration,
		m.dbOperationErrorsTotal,
		m.snapshotRowsHist,
	}
}

// Describe implements the Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDbOperation records the outcome and duration of a database operation.
// errorType is ignored when err is nil.
func (m *DatastoreMetrics) RecordDbOperation(operation, table string, start time.Time, err error, errorType string) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.dbOperationErrorsTotal.WithLabelValues(operation, table, errorType).Inc()
	}
	m.dbOperationsTotal.WithLabelValues(operation, table, status).Inc()
	m.dbOperationDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordSnapshotSize records how many pins and uploads a snapshot loaded
func (m *DatastoreMetrics) RecordSnapshotSize(pins, uploads int) {
	m.snapshotRowsHist.WithLabelValues(TablePins).Observe(float64(pins))
	m.snapshotRowsHist.WithLabelValues(TableUploads).Observe(float64(uploads))
}
