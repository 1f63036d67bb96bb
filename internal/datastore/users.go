package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// lookupUserID resolves username to its primary key inside db.
func lookupUserID(db *gorm.DB, username, operation string) (uint, error) {
	var user User
	err := db.Select("id").Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, notFound(ErrUserNotFound, "user", operation)
	}
	if err != nil {
		return 0, dbError(err, operation, metrics.TableUsers)
	}
	return user.ID, nil
}

// CreateUser inserts a new account. A duplicate username returns ErrUsernameTaken.
func (ds *DataStore) CreateUser(user *User) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpCreateUser, metrics.TableUsers, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	if user.ProfilePictureURL == "" {
		user.ProfilePictureURL = DefaultProfilePictureURL
	}
	if err = ds.DB.Omit("Pins", "Uploads").Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return conflict(ErrUsernameTaken, metrics.OpCreateUser)
		}
		return dbError(err, metrics.OpCreateUser, metrics.TableUsers)
	}

	ds.log.Info("user registered", logger.String("username", user.Username))
	return nil
}

// GetUser loads an account with its pins and uploads in insertion order.
func (ds *DataStore) GetUser(username string) (_ *User, err error) {
	defer func(start time.Time) { ds.track(metrics.OpGetUser, metrics.TableUsers, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	var user User
	err = ds.DB.Preload("Pins", orderByID).Preload("Uploads", orderByID).
		Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(ErrUserNotFound, "user", metrics.OpGetUser)
	}
	if err != nil {
		return nil, dbError(err, metrics.OpGetUser, metrics.TableUsers)
	}
	return &user, nil
}

// ListUsers returns every account with pins and uploads.
func (ds *DataStore) ListUsers() (_ []User, err error) {
	defer func(start time.Time) { ds.track(metrics.OpListUsers, metrics.TableUsers, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	users := []User{}
	if err = ds.DB.Preload("Pins", orderByID).Preload("Uploads", orderByID).Order("id ASC").Find(&users).Error; err != nil {
		return nil, dbError(err, metrics.OpListUsers, metrics.TableUsers)
	}
	return users, nil
}

// SaveLocation stores the user's current position.
func (ds *DataStore) SaveLocation(username string, latitude, longitude float64) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpSaveLocation, metrics.TableUsers, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpSaveLocation)
		if err != nil {
			return err
		}
		err = tx.Model(&User{ID: id}).Updates(map[string]any{
			"location_latitude":  latitude,
			"location_longitude": longitude,
		}).Error
		return dbError(err, metrics.OpSaveLocation, metrics.TableUsers)
	})
}

// UpdatePassword replaces the stored bcrypt hash.
func (ds *DataStore) UpdatePassword(username, passwordHash string) (err error) {
	defer func(start time.Time) { ds.track(metrics.OpUpdatePassword, metrics.TableUsers, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return err
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		id, err := lookupUserID(tx, username, metrics.OpUpdatePassword)
		if err != nil {
			return err
		}
		err = tx.Model(&User{ID: id}).Update("password_hash", passwordHash).Error
		return dbError(err, metrics.OpUpdatePassword, metrics.TableUsers)
	})
}

// UpdateProfile renames the account and/or replaces its picture. Empty values
// keep the current ones. ErrNoChanges is returned when nothing would change.
func (ds *DataStore) UpdateProfile(currentUsername, newUsername, pictureURL string) (_ *User, err error) {
	defer func(start time.Time) { ds.track(metrics.OpUpdateProfile, metrics.TableUsers, start, err) }(time.Now())
	if err = ds.ready(); err != nil {
		return nil, err
	}

	var user User
	err = ds.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", currentUsername).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(ErrUserNotFound, "user", metrics.OpUpdateProfile)
		}
		if err != nil {
			return dbError(err, metrics.OpUpdateProfile, metrics.TableUsers)
		}

		changes := map[string]any{}
		if newUsername != "" && newUsername != user.Username {
			var taken int64
			if err := tx.Model(&User{}).Where("username = ?", newUsername).Count(&taken).Error; err != nil {
				return dbError(err, metrics.OpUpdateProfile, metrics.TableUsers)
			}
			if taken > 0 {
				return conflict(ErrUsernameTaken, metrics.OpUpdateProfile)
			}
			changes["username"] = newUsername
		}
		if pictureURL != "" && pictureURL != user.ProfilePictureURL {
			changes["profile_picture_url"] = pictureURL
		}
		if len(changes) == 0 {
			return noChanges(metrics.OpUpdateProfile)
		}

		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			if isDuplicateKey(err) {
				return conflict(ErrUsernameTaken, metrics.OpUpdateProfile)
			}
			return dbError(err, metrics.OpUpdateProfile, metrics.TableUsers)
		}
		return tx.Preload("Pins", orderByID).Preload("Uploads", orderByID).Take(&user, user.ID).Error
	})
	if err != nil {
		return nil, dbError(err, metrics.OpUpdateProfile, metrics.TableUsers)
	}

	ds.log.Info("profile updated",
		logger.String("username", currentUsername),
		logger.String("new_username", user.Username))
	return &user, nil
}
