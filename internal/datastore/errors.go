package datastore

import (
	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/errors"
)

var (
	ErrUsernameTaken   = errors.NewStd("username already exists")
	ErrUserNotFound    = errors.NewStd("user not found")
	ErrNoChanges       = errors.NewStd("no changes applied")
	ErrPinNotFound     = errors.NewStd("pin not found")
	ErrDuplicateUpload = errors.NewStd("file already uploaded")
	ErrNotInitialized  = errors.NewStd("database connection is not initialized")
)

func notFound(sentinel error, resource, operation string) error {
	return errors.NotFoundError(sentinel, resource).
		Component("datastore").
		Context("operation", operation).
		Build()
}

func conflict(sentinel error, operation string) error {
	return errors.New(sentinel).
		Component("datastore").
		Category(errors.CategoryConflict).
		Context("operation", operation).
		Build()
}

func noChanges(operation string) error {
	return errors.New(ErrNoChanges).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("operation", operation).
		Build()
}

// dbError wraps a driver error. Errors already built by this package pass through.
func dbError(err error, operation, table string) error {
	if err == nil {
		return nil
	}
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return err
	}
	return errors.DatabaseError(err, operation).
		Component("datastore").
		Context("table", table).
		Build()
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// errorType is the metrics label for err.
func errorType(err error) string {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return string(enhanced.Category)
	}
	return string(errors.CategoryDatabase)
}
