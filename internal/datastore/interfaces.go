package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// Interface abstracts the underlying database implementation and defines the interface for database operations.
type Interface interface {
	Open() error
	Close() error

	CreateUser(user *User) error
	GetUser(username string) (*User, error)
	ListUsers() ([]User, error)
	SaveLocation(username string, latitude, longitude float64) error
	UpdatePassword(username, passwordHash string) error
	UpdateProfile(currentUsername, newUsername, pictureURL string) (*User, error)

	SavePin(username string, pin *Pin) error
	GetPins(username string) ([]Pin, error)
	UpdatePin(username, cameraID string, update PinUpdate) error
	DeletePin(username, cameraID string) error
	GetCameraIDs(username string) ([]string, error)

	LogUpload(username string, upload *Upload) error
	DeleteUpload(username, filePath string) error
	GetUploadsByCamera(username, cameraID string) ([]Upload, error)
	GetSnapshot(username string) (*Snapshot, error)
}

// PinUpdate carries the replacement values for UpdatePin.
type PinUpdate struct {
	Name      string
	CameraID  string
	Latitude  float64
	Longitude float64
}

// DataStore implements Interface on top of a gorm connection opened by
// SQLiteStore or MySQLStore.
type DataStore struct {
	DB      *gorm.DB
	log     logger.Logger
	metrics *metrics.DatastoreMetrics
}

// slowQueryThreshold is passed to the gorm logger adapter.
const slowQueryThreshold = 500 * time.Millisecond

// New creates a new DataStore instance based on the provided configuration
// settings. log and m may be nil.
func New(settings *conf.Settings, log logger.Logger, m *metrics.DatastoreMetrics) Interface {
	base := newDataStore(nil, log, m)
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{DataStore: base, Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{DataStore: base, Settings: settings}
	default:
		return nil
	}
}

// NewWithDB wraps an already opened connection. The schema is migrated on the
// first call to Open.
func NewWithDB(db *gorm.DB, log logger.Logger, m *metrics.DatastoreMetrics) *DataStore {
	ds := newDataStore(db, log, m)
	return &ds
}

func newDataStore(db *gorm.DB, log logger.Logger, m *metrics.DatastoreMetrics) DataStore {
	if log == nil {
		log = logger.Global().Module("datastore")
	}
	return DataStore{DB: db, log: log, metrics: m}
}

// Open migrates the schema of an injected connection.
func (ds *DataStore) Open() error {
	if ds.DB == nil {
		return ErrNotInitialized
	}
	return performAutoMigration(ds.DB, ds.log, "injected")
}

// Close releases the underlying connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", "")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", "")
	}
	ds.log.Info("database connection closed")
	return nil
}

// track records an operation in the datastore metrics.
func (ds *DataStore) track(operation, table string, start time.Time, err error) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.RecordDbOperation(operation, table, start, err, errorType(err))
}

func (ds *DataStore) ready() error {
	if ds.DB == nil {
		return ErrNotInitialized
	}
	return nil
}
