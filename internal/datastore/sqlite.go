package datastore

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
)

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if strings.TrimSpace(settings.Output.SQLite.Path) == "" {
		return errors.New(errors.NewStd("sqlite path is empty")).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// sqliteDSN enables foreign keys so pins and uploads are removed with their user.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

// Open sets up the SQLite database connection
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	path := store.Settings.Output.SQLite.Path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.New(err).
					Component("datastore").
					Category(errors.CategoryFileIO).
					Context("path", dir).
					Build()
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(store.log, slowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		store.log.Error("failed to open SQLite database",
			logger.String("path", path),
			logger.Error(err))
		return dbError(err, "open", "")
	}

	// one connection keeps an in-memory database alive and serializes writers
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open", "")
	}
	sqlDB.SetMaxOpenConns(1)

	store.DB = db
	return performAutoMigration(db, store.log, "SQLite")
}
