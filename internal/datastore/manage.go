package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/logger"
)

// performAutoMigration creates or updates the users, pins and uploads tables.
func performAutoMigration(db *gorm.DB, log logger.Logger, dbType string) error {
	start := time.Now()
	if err := db.AutoMigrate(&User{}, &Pin{}, &Upload{}); err != nil {
		log.Error("auto migration failed",
			logger.String("db_type", dbType),
			logger.Error(err))
		return dbError(err, "auto-migrate", "")
	}
	log.Info("database schema ready",
		logger.String("db_type", dbType),
		logger.Duration("duration", time.Since(start)))
	return nil
}
