package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// SavePin appends a pin to the user's list.
func (ds *DataStore) SavePin(username string, pin *Pin) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpSavePin, metrics.TablePins, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpSavePin)
		if err != nil {
			return err
		}
		pin.ID = 0
		pin.UserID = id
		return dbError(tx.Create(pin).Error, metrics.OpSavePin, metrics.TablePins)
	})
}

// GetPins returns the user's pins in the order they were saved.
func (ds *DataStore) GetPins(username string) (_ []Pin, err error) {
	defer func(start time.Time) { ds.track(metrics.OpGetPins, metrics.TablePins, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	pins := []Pin{}
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpGetPins)
		if err != nil {
			return err
		}
		return dbError(tx.Where("user_id = ?", id).Order("id ASC").Find(&pins).Error, metrics.OpGetPins, metrics.TablePins)
	})
	if err != nil {
		return nil, err
	}
	return pins, nil
}

// UpdatePin overwrites the first pin carrying cameraID.
func (ds *DataStore) UpdatePin(username, cameraID string, update PinUpdate) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpUpdatePin, metrics.TablePins, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpUpdatePin)
		if err != nil {
			return err
		}

		var pin Pin
		err = tx.Where("user_id = ? AND camera_id = ?", id, cameraID).Order("id ASC").First(&pin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(ErrPinNotFound, "pin", metrics.OpUpdatePin)
		}
		if err != nil {
			return dbError(err, metrics.OpUpdatePin, metrics.TablePins)
		}

		err = tx.Model(&pin).Updates(map[string]any{
			"name":      update.Name,
			"camera_id": update.CameraID,
			"latitude":  update.Latitude,
			"longitude": update.Longitude,
		}).Error
		return dbError(err, metrics.OpUpdatePin, metrics.TablePins)
	})
}

// DeletePin removes every pin of the user carrying cameraID. ErrPinNotFound is
// returned when nothing was removed, including when the user does not exist.
func (ds *DataStore) DeletePin(username, cameraID string) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpDeletePin, metrics.TablePins, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpDeletePin)
		if errors.IsNotFound(err) {
			return notFound(ErrPinNotFound, "pin", metrics.OpDeletePin)
		}
		if err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND camera_id = ?", id, cameraID).Delete(&Pin{})
		if result.Error != nil {
			return dbError(result.Error, metrics.OpDeletePin, metrics.TablePins)
		}
		if result.RowsAffected == 0 {
			return notFound(ErrPinNotFound, "pin", metrics.OpDeletePin)
		}
		return nil
	})
}

// GetCameraIDs lists the camera ids of the user's pins in pin order. Duplicates are kept.
func (ds *DataStore) GetCameraIDs(username string) (_ []string, err error) {
	defer func(start time.Time) { ds.track(metrics.OpGetCameraIDs, metrics.TablePins, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	ids := []string{}
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpGetCameraIDs)
		if err != nil {
			return err
		}
		err = tx.Model(&Pin{}).Where("user_id = ?", id).Order("id ASC").Pluck("camera_id", &ids).Error
		return dbError(err, metrics.OpGetCameraIDs, metrics.TablePins)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
