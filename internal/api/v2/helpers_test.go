package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/trailtracker/trailtracker/internal/auth"
	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go-cache runs a janitor until the cache is garbage collected
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

// MockDataStore implements datastore.Interface for handler tests.
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Open() error  { return m.Called().Error(0) }
func (m *MockDataStore) Close() error { return m.Called().Error(0) }

func (m *MockDataStore) CreateUser(user *datastore.User) error {
	return m.Called(user).Error(0)
}

func (m *MockDataStore) GetUser(username string) (*datastore.User, error) {
	args := m.Called(username)
	if u := args.Get(0); u != nil {
		return u.(*datastore.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataStore) ListUsers() ([]datastore.User, error) {
	args := m.Called()
	return args.Get(0).([]datastore.User), args.Error(1)
}

func (m *MockDataStore) SaveLocation(username string, latitude, longitude float64) error {
	return m.Called(username, latitude, longitude).Error(0)
}

func (m *MockDataStore) UpdatePassword(username, passwordHash string) error {
	return m.Called(username, passwordHash).Error(0)
}

func (m *MockDataStore) UpdateProfile(currentUsername, newUsername, pictureURL string) (*datastore.User, error) {
	args := m.Called(currentUsername, newUsername, pictureURL)
	if u := args.Get(0); u != nil {
		return u.(*datastore.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataStore) SavePin(username string, pin *datastore.Pin) error {
	return m.Called(username, pin).Error(0)
}

func (m *MockDataStore) GetPins(username string) ([]datastore.Pin, error) {
	args := m.Called(username)
	return args.Get(0).([]datastore.Pin), args.Error(1)
}

func (m *MockDataStore) UpdatePin(username, cameraID string, update datastore.PinUpdate) error {
	return m.Called(username, cameraID, update).Error(0)
}

func (m *MockDataStore) DeletePin(username, cameraID string) error {
	return m.Called(username, cameraID).Error(0)
}

func (m *MockDataStore) GetCameraIDs(username string) ([]string, error) {
	args := m.Called(username)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataStore) LogUpload(username string, upload *datastore.Upload) error {
	return m.Called(username, upload).Error(0)
}

func (m *MockDataStore) DeleteUpload(username, filePath string) error {
	return m.Called(username, filePath).Error(0)
}

func (m *MockDataStore) GetUploadsByCamera(username, cameraID string) ([]datastore.Upload, error) {
	args := m.Called(username, cameraID)
	return args.Get(0).([]datastore.Upload), args.Error(1)
}

func (m *MockDataStore) GetSnapshot(username string) (*datastore.Snapshot, error) {
	args := m.Called(username)
	if s := args.Get(0); s != nil {
		return s.(*datastore.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ datastore.Interface = (*MockDataStore)(nil)

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Cache.SummaryTTL = time.Minute
	return settings
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)
}

// setupTestEnvironment builds a controller over ds with a fast hasher and fresh metrics.
func setupTestEnvironment(t *testing.T, ds datastore.Interface, settings *conf.Settings, opts ...Option) (*echo.Echo, *Controller, *observability.Metrics) {
	t.Helper()

	m, err := observability.NewMetrics()
	require.NoError(t, err)

	e := echo.New()
	opts = append([]Option{
		WithLogger(testLogger()),
		WithMetrics(m),
		WithHasher(auth.NewHasher(bcrypt.MinCost)),
	}, opts...)

	controller, err := New(e, ds, settings, opts...)
	require.NoError(t, err)
	t.Cleanup(controller.Shutdown)

	return e, controller, m
}

func setupMockEnvironment(t *testing.T) (*echo.Echo, *MockDataStore, *Controller) {
	t.Helper()
	ds := &MockDataStore{}
	e, controller, _ := setupTestEnvironment(t, ds, testSettings())
	t.Cleanup(func() { ds.AssertExpectations(t) })
	return e, ds, controller
}

// doJSON sends body as JSON to the router and returns the recorder.
func doJSON(t *testing.T, e *echo.Echo, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.NewHasher(bcrypt.MinCost).HashPassword(password)
	require.NoError(t, err)
	return hash
}
