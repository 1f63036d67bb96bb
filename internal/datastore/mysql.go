package datastore

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/logger"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// mysqlTableOptions makes usernames, camera ids and file paths compare
// case-sensitively, as they do on SQLite.
const mysqlTableOptions = "DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

func mysqlDSN(s *conf.MySQLSettings) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&collation=utf8mb4_bin&parseTime=True&loc=Local",
		s.Username, s.Password, s.Host, s.Port, s.Database)
}

// Open sets up the MySQL database connection
func (store *MySQLStore) Open() error {
	cfg := &store.Settings.Output.MySQL

	db, err := gorm.Open(mysql.Open(mysqlDSN(cfg)), &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(store.log, slowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		store.log.Error("failed to open MySQL database",
			logger.String("host", cfg.Host),
			logger.String("port", cfg.Port),
			logger.String("database", cfg.Database),
			logger.Error(err))
		return dbError(err, "open", "")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open", "")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	store.DB = db
	return performAutoMigration(db.Set("gorm:table_options", mysqlTableOptions), store.log, "MySQL")
}
