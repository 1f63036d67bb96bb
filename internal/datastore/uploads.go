package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// LogUpload records a scan. A file path can be logged only once per user.
func (ds *DataStore) LogUpload(username string, upload *Upload) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpLogUpload, metrics.TableUploads, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpLogUpload)
		if err != nil {
			return err
		}
		upload.ID = 0
		upload.UserID = id
		if err := tx.Create(upload).Error; err != nil {
			if isDuplicateKey(err) {
				return conflict(ErrDuplicateUpload, metrics.OpLogUpload)
			}
			return dbError(err, metrics.OpLogUpload, metrics.TableUploads)
		}
		return nil
	})
}

// DeleteUpload removes the upload with filePath. Deleting a missing upload succeeds.
func (ds *DataStore) DeleteUpload(username, filePath string) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpDeleteUpload, metrics.TableUploads, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpDeleteUpload)
		if err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND file_path = ?", id, filePath).Delete(&Upload{})
		if result.Error != nil {
			return dbError(result.Error, metrics.OpDeleteUpload, metrics.TableUploads)
		}
		ds.log.Debug("upload deleted",
			logger.String("username", username),
			logger.String("filepath", filePath),
			logger.Int64("rows", result.RowsAffected))
		return nil
	})
}

// GetUploadsByCamera returns the user's uploads from one camera in insertion order.
func (ds *DataStore) GetUploadsByCamera(username, cameraID string) (_ []Upload, err error) {
	defer func(start time.Time) { ds.track(metrics.OpGetUploads, metrics.TableUploads, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	uploads := []Upload{}
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpGetUploads)
		if err != nil {
			return err
		}
		err = tx.Where("user_id = ? AND camera_id = ?", id, cameraID).Order("id ASC").Find(&uploads).Error
		return dbError(err, metrics.OpGetUploads, metrics.TableUploads)
	})
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

// GetSnapshot reads the user, its pins and its uploads in one transaction so the
// summary sees a consistent view.
func (ds *DataStore) GetSnapshot(username string) (_ *Snapshot, err error) {
	defer func(start time.Time) { ds.track(metrics.OpSnapshot, metrics.TableUploads, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	var (
		user    User
		pins    []Pin
		uploads []Upload
	)
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(ErrUserNotFound, "user", metrics.OpSnapshot)
		}
		if err != nil {
			return dbError(err, metrics.OpSnapshot, metrics.TableUsers)
		}
		if err := tx.Where("user_id = ?", user.ID).Order("id ASC").Find(&pins).Error; err != nil {
			return dbError(err, metrics.OpSnapshot, metrics.TablePins)
		}
		if err := tx.Where("user_id = ?", user.ID).Order("id ASC").Find(&uploads).Error; err != nil {
			return dbError(err, metrics.OpSnapshot, metrics.TableUploads)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ds.metrics != nil {
		ds.metrics.RecordSnapshotSize(len(pins), len(uploads))
	}
	return &Snapshot{
		User:    user,
		Pins:    pinRecords(pins),
		Uploads: uploadRecords(uploads),
	}, nil
}
