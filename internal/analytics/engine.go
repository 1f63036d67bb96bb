package analytics

import (
	"context"
	"time"

	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// Engine wraps GetUploadSummary with logging and metrics. The zero value is not usable;
// create one with NewEngine. An Engine is safe for concurrent use.
type Engine struct {
	log     logger.Logger
	metrics *metrics.AnalyticsMetrics
}

// NewEngine creates an Engine. m may be nil when metrics are disabled.
func NewEngine(log logger.Logger, m *metrics.AnalyticsMetrics) *Engine {
	if log == nil {
		log = logger.Global().Module("analytics")
	}
	return &Engine{log: log, metrics: m}
}

// Summarize computes the summary for one user's snapshot.
func (e *Engine) Summarize(ctx context.Context, uploads []UploadRecord, pins []PinRecord, axis Axis, filterValue string) (Summary, error) {
	log := e.log.WithContext(ctx)
	start := time.Now()

	summary, err := GetUploadSummary(uploads, pins, axis, filterValue)
	if err != nil {
		kind := validationKind(err)
		if e.metrics != nil {
			e.metrics.RecordValidationError(kind)
		}
		log.Debug("rejected summary request",
			logger.String("axis", axis.String()),
			logger.String("kind", kind),
			logger.Error(err))
		return Summary{}, err
	}

	if e.metrics != nil {
		e.metrics.RecordSummary(axis.String(), len(summary.Groups), len(summary.Recommendations) > 0, time.Since(start).Seconds())
	}

	log.Debug("computed upload summary",
		logger.String("axis", axis.String()),
		logger.String("filter", filterValue),
		logger.Int("uploads", len(uploads)),
		logger.Int("pins", len(pins)),
		logger.Int("groups", len(summary.Groups)),
		logger.Strings("recommendations", summary.Recommendations))

	return summary, nil
}

func validationKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAxis):
		return "invalid_axis"
	case errors.Is(err, ErrInvalidFilter):
		return "invalid_filter"
	default:
		return "other"
	}
}
