// Package analytics turns a user's upload history into per-group counts and a
// single recommendation sentence.
//
// The functions in this package are pure: they read the supplied pins and uploads,
// never modify them, and hold no state. Callers are expected to pass a consistent
// snapshot of one user's data, typically loaded inside a single read transaction.
//
//	summary, err := analytics.GetUploadSummary(snap.Uploads, snap.Pins, analytics.AxisAnimal, "deer")
//	if err != nil {
//	    return err // ErrInvalidAxis or ErrInvalidFilter
//	}
//
// Grouping is asymmetric. When filtering by animal the set of cameras comes from the
// pins, so a pinned camera with no matching uploads is reported with a zero count and
// an unpinned camera is never reported. When filtering by camera only animals that
// actually occur in the filtered uploads are reported.
package analytics

import "github.com/trailtracker/trailtracker/internal/errors"

// Axis selects the grouping dimension of a summary.
type Axis string

const (
	// AxisAnimal filters uploads by animal and groups them by camera.
	AxisAnimal Axis = "animal"
	// AxisCamera filters uploads by camera and groups them by animal.
	AxisCamera Axis = "camera"
)

// Valid reports whether a is one of the known axes.
func (a Axis) Valid() bool {
	return a == AxisAnimal || a == AxisCamera
}

func (a Axis) String() string {
	return string(a)
}

// ParseAxis maps a request's sort_by value to an Axis.
func ParseAxis(s string) (Axis, error) {
	axis := Axis(s)
	if !axis.Valid() {
		return "", invalidAxisError(axis)
	}
	return axis, nil
}

// UploadRecord describes one trail-camera capture.
type UploadRecord struct {
	FilePath   string `json:"filepath"`
	CameraID   string `json:"camera_id"`
	Animal     string `json:"animal"`
	PulledData string `json:"pulled_data"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// PinRecord is a saved camera location. CameraID joins pins to uploads.
type PinRecord struct {
	Name      string  `json:"name"`
	CameraID  string  `json:"camera_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GroupedCount is the number of filtered uploads falling into one group.
type GroupedCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the combined result of Aggregate and Recommend.
type Summary struct {
	Groups          []GroupedCount `json:"uploads"`
	Recommendations []string       `json:"recommendations"`
}

func invalidAxisError(axis Axis) error {
	return errors.New(ErrInvalidAxis).
		Component("analytics").
		Category(errors.CategoryValidation).
		Context("axis", string(axis)).
		Build()
}

func invalidFilterError(axis Axis) error {
	return errors.New(ErrInvalidFilter).
		Component("analytics").
		Category(errors.CategoryValidation).
		Context("axis", string(axis)).
		Build()
}
