// Package metrics provides constants used across metric definitions.
package metrics

// Status label values.
const (
	// StatusSuccess marks an operation that completed without error.
	StatusSuccess = "success"
	// StatusError marks an operation that returned an error.
	StatusError = "error"
)

// Datastore operation label values.
const (
	OpCreateUser     = "create_user"
	OpGetUser        = "get_user"
	OpListUsers      = "list_users"
	OpSaveLocation   = "save_location"
	OpUpdatePassword = "update_password"
	OpUpdateProfile  = "update_profile"
	OpSavePin        = "save_pin"
	OpGetPins        = "get_pins"
	OpUpdatePin      = "update_pin"
	OpDeletePin      = "delete_pin"
	OpGetCameraIDs   = "get_camera_ids"
	OpLogUpload      = "log_upload"
	OpDeleteUpload   = "delete_upload"
	OpGetUploads     = "get_uploads_by_camera"
	OpSnapshot       = "snapshot"
)

// Table label values.
const (
	TableUsers   = "users"
	TablePins    = "pins"
	TableUploads = "uploads"
)

// Cache label values.
const (
	CacheHit        = "hit"
	CacheMiss       = "miss"
	CacheInvalidate = "invalidate"
)

// Histogram bucket configuration constants.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~16s range).
	BucketStart1ms = 0.001
	// BucketStart64B is the starting bucket for 64 byte histograms.
	BucketStart64B = 64.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount10 is the number of buckets for short-range histograms.
	BucketCount10 = 10
	// BucketCount12 is the number of buckets for medium-range histograms.
	BucketCount12 = 12
	// BucketCount15 is the number of buckets for long-range histograms.
	BucketCount15 = 15
)
