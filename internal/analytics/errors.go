package analytics

import "github.com/trailtracker/trailtracker/internal/errors"

var (
	// ErrInvalidAxis is returned for a grouping axis other than AxisAnimal or AxisCamera.
	ErrInvalidAxis = errors.NewStd("invalid sort option")

	// ErrInvalidFilter is returned when the filter value is empty.
	ErrInvalidFilter = errors.NewStd("filter value is required")
)
