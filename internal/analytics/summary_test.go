package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

func TestGetUploadSummary_Scenarios(t *testing.T) {
	t.Parallel()

	uploads, pins := sampleData()

	t.Run("best camera for deer", func(t *testing.T) {
		t.Parallel()

		summary, err := GetUploadSummary(uploads, pins, AxisAnimal, "deer")
		require.NoError(t, err)
		assert.Equal(t, []GroupedCount{{Label: "cam1", Count: 2}, {Label: "cam2", Count: 0}}, summary.Groups)
		assert.Equal(t, []string{"Based on the selection 'deer', the best camera is 'cam1'."}, summary.Recommendations)
	})

	t.Run("most frequent animal on cam1", func(t *testing.T) {
		t.Parallel()

		summary, err := GetUploadSummary(uploads, pins, AxisCamera, "cam1")
		require.NoError(t, err)
		assert.Equal(t, []GroupedCount{{Label: "deer", Count: 2}}, summary.Groups)
		assert.Equal(t, []string{"Based on the selection 'cam1', the most frequent animal is 'deer'."}, summary.Recommendations)
	})

	t.Run("unknown axis", func(t *testing.T) {
		t.Parallel()

		_, err := GetUploadSummary(uploads, pins, Axis("unknown"), "deer")
		require.ErrorIs(t, err, ErrInvalidAxis)
	})

	t.Run("empty snapshot", func(t *testing.T) {
		t.Parallel()

		summary, err := GetUploadSummary(nil, nil, AxisAnimal, "deer")
		require.NoError(t, err)
		assert.Empty(t, summary.Groups)
		assert.Empty(t, summary.Recommendations)
	})
}

func TestSummary_JSONShape(t *testing.T) {
	t.Parallel()

	summary, err := GetUploadSummary(nil, nil, AxisCamera, "cam1")
	require.NoError(t, err)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uploads":[],"recommendations":[]}`, string(data))
}

func TestEngine_Summarize(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewAnalyticsMetrics(registry)
	require.NoError(t, err)

	var buf bytes.Buffer
	engine := NewEngine(logger.NewSlogLogger(&buf, logger.LogLevelDebug, time.UTC), m)

	uploads, pins := sampleData()
	summary, err := engine.Summarize(context.Background(), uploads, pins, AxisAnimal, "deer")
	require.NoError(t, err)
	assert.Len(t, summary.Recommendations, 1)

	_, err = engine.Summarize(context.Background(), uploads, pins, AxisCamera, "")
	require.ErrorIs(t, err, ErrInvalidFilter)

	assert.Contains(t, buf.String(), "computed upload summary")
	assert.Contains(t, buf.String(), "the best camera is 'cam1'")
	assert.Contains(t, buf.String(), "invalid_filter")

	summaries, err := testutil.GatherAndCount(registry, "analytics_summaries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, summaries)
	rejected, err := testutil.GatherAndCount(registry, "analytics_validation_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	t.Parallel()

	engine := NewEngine(logger.NewSlogLogger(nil, logger.LogLevelError, time.UTC), nil)
	uploads, pins := sampleData()

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			summary, err := engine.Summarize(context.Background(), uploads, pins, AxisCamera, "cam1")
			assert.NoError(t, err)
			assert.Equal(t, []GroupedCount{{Label: "deer", Count: 2}}, summary.Groups)
		})
	}
	wg.Wait()
}
