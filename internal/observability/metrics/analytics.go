package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AnalyticsMetrics tracks upload summary computation and the summary cache.
type AnalyticsMetrics struct {
	registry *prometheus.Registry

	summariesTotal      *prometheus.CounterVec
	validationErrors    *prometheus.CounterVec
	summaryDuration     *prometheus.HistogramVec
	groupCountHist      *prometheus.HistogramVec
	recommendationTotal *prometheus.CounterVec
	cacheOperations     *prometheus.CounterVec
}

// NewAnalyticsMetrics creates and registers the analytics metrics
func NewAnalyticsMetrics(registry *prometheus.Registry) (*AnalyticsMetrics, error) {
	m := &AnalyticsMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AnalyticsMetrics) initMetrics() {
	m.summariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_summaries_total",
			Help: "Total number of upload summaries computed",
		},
		[]string{"axis"},
	)

	m.validationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_validation_errors_total",
			Help: "Total number of rejected summary requests",
		},
		[]string{"kind"}, // kind: invalid_axis, invalid_filter
	)

	m.summaryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_summary_duration_seconds",
			Help:    "Time taken to aggregate and recommend",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount12),
		},
		[]string{"axis"},
	)

	m.groupCountHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_summary_groups",
			Help:    "Number of groups in computed summaries",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"axis"},
	)

	m.recommendationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_recommendations_total",
			Help: "Total number of summaries by whether a recommendation was produced",
		},
		[]string{"axis", "produced"},
	)

	m.cacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_summary_cache_operations_total",
			Help: "Summary cache lookups and invalidations",
		},
		[]string{"result"}, // result: hit, miss, invalidate
	)
}

func (m *AnalyticsMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.summariesTotal,
		m.validationErrors,
		m.summaryDuration,
		m.groupCountHist,
		m.recommendationTotal,
		m.cacheOperations,
	}
}

// Describe implements the Collector interface
func (m *AnalyticsMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *AnalyticsMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordSummary records one successful summary computation
func (m *AnalyticsMetrics) RecordSummary(axis string, groups int, recommended bool, duration float64) {
	m.summariesTotal.WithLabelValues(axis).Inc()
	m.summaryDuration.WithLabelValues(axis).Observe(duration)
	m.groupCountHist.WithLabelValues(axis).Observe(float64(groups))

	produced := "false"
	if recommended {
		produced = "true"
	}
	m.recommendationTotal.WithLabelValues(axis, produced).Inc()
}

// RecordValidationError records a rejected request by kind
func (m *AnalyticsMetrics) RecordValidationError(kind string) {
	m.validationErrors.WithLabelValues(kind).Inc()
}

// RecordCacheOperation records a summary cache hit, miss or invalidation
func (m *AnalyticsMetrics) RecordCacheOperation(result string) {
	m.cacheOperations.WithLabelValues(result).Inc()
}
