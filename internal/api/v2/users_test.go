package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
)

func userNotFound() error {
	return errors.NotFoundError(datastore.ErrUserNotFound, "user").Build()
}

func TestWelcome(t *testing.T) {
	e, _, _ := setupMockEnvironment(t)

	rec := doJSON(t, e, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, WelcomeMessage, rec.Body.String())
}

func TestNew_RequiresDatastore(t *testing.T) {
	_, err := New(nil, nil, testSettings())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e, ds, _ := setupMockEnvironment(t)
		ds.On("CreateUser", mock.MatchedBy(func(u *datastore.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com" &&
				u.PasswordHash != "" && u.PasswordHash != "s3cret"
		})).Return(nil).Once()

		rec := doJSON(t, e, http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice", "password": "s3cret", "name": "Alice", "email": "alice@example.com",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "User alice registered successfully!", decode(t, rec)["message"])
	})

	t.Run("username taken", func(t *testing.T) {
		e, ds, _ := setupMockEnvironment(t)
		taken := errors.New(datastore.ErrUsernameTaken).Category(errors.CategoryConflict).Build()
		ds.On("CreateUser", mock.Anything).Return(taken).Once()

		rec := doJSON(t, e, http.MethodPost, "/api/users/register", map[string]string{"username": "alice", "password": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Username already exists. Try a different one.", decode(t, rec)["message"])
	})

	t.Run("database failure", func(t *testing.T) {
		e, ds, _ := setupMockEnvironment(t)
		ds.On("CreateUser", mock.Anything).Return(fmt.Errorf("disk I/O error")).Once()

		rec := doJSON(t, e, http.MethodPost, "/api/users/register", map[string]string{"username": "alice", "password": "x"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Error registering user", decode(t, rec)["message"])
	})

	t.Run("validation", func(t *testing.T) {
		e, _, _ := setupMockEnvironment(t)

		rec := doJSON(t, e, http.MethodPost, "/api/users/register", map[string]string{"username": "alice", "email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		msg := decode(t, rec)["message"].(string)
		assert.Contains(t, msg, "password")
		assert.Contains(t, msg, "email")
	})
}

func TestLogin(t *testing.T) {
	hash := hashFor(t, "s3cret")

	tests := []struct {
		name     string
		password string
		user     *datastore.User
		dsErr    error
		wantCode int
		wantMsg  string
	}{
		{"success", "s3cret", &datastore.User{Username: "alice", PasswordHash: hash}, nil, http.StatusOK, "Login successful"},
		{"wrong password", "nope", &datastore.User{Username: "alice", PasswordHash: hash}, nil, http.StatusBadRequest, "Invalid username or password"},
		{"unknown user", "s3cret", nil, userNotFound(), http.StatusBadRequest, "Invalid username or password"},
		{"database failure", "s3cret", nil, fmt.Errorf("connection reset"), http.StatusInternalServerError, "Error logging in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ds, _ := setupMockEnvironment(t)
			ds.On("GetUser", "alice").Return(tt.user, tt.dsErr).Once()

			rec := doJSON(t, e, http.MethodPost, "/api/users/login", map[string]string{"username": "alice", "password": tt.password})
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantCode == http.StatusOK {
				user := body["user"].(map[string]any)
				assert.Equal(t, "alice", user["username"])
				assert.NotContains(t, user, "password_hash")
				assert.NotContains(t, rec.Body.String(), hash)
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	e, ds, _ := setupMockEnvironment(t)
	ds.On("ListUsers").Return([]datastore.User{{Username: "alice", PasswordHash: "h"}, {Username: "bob"}}, nil).Once()

	rec := doJSON(t, e, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	users := decode(t, rec)["users"].([]any)
	assert.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestGetProfile(t *testing.T) {
	e, ds, _ := setupMockEnvironment(t)
	ds.On("GetUser", "alice").Return(&datastore.User{Username: "alice", Name: "Alice"}, nil).Once()
	ds.On("GetUser", "ghost").Return(nil, userNotFound()).Once()

	rec := doJSON(t, e, http.MethodPost, "/api/users/profile", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice", decode(t, rec)["user"].(map[string]any)["name"])

	rec = doJSON(t, e, http.MethodPost, "/api/users/profile", map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}

func TestChangePassword(t *testing.T) {
	hash := hashFor(t, "old")

	t.Run("success", func(t *testing.T) {
		e, ds, _ := setupMockEnvironment(t)
		ds.On("GetUser", "alice").Return(&datastore.User{Username: "alice", PasswordHash: hash}, nil).Once()
		ds.On("UpdatePassword", "alice", mock.MatchedBy(func(h string) bool { return h != "" && h != hash })).Return(nil).Once()

		rec := doJSON(t, e, http.MethodPost, "/api/users/change_password", map[string]string{
			"username": "alice", "current_password": "old", "new_password": "new",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Password changed successfully", decode(t, rec)["message"])
	})

	t.Run("wrong current password", func(t *testing.T) {
		e, ds, _ := setupMockEnvironment(t)
		ds.On("GetUser", "alice").Return(&datastore.User{Username: "alice", PasswordHash: hash}, nil).Once()

		rec := doJSON(t, e, http.MethodPost, "/api/users/change_password", map[string]string{
			"username": "alice", "current_password": "guess", "new_password": "new",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Current password is incorrect", decode(t, rec)["message"])
	})

	t.Run("unknown user", func(t *testing.T) {
		e, ds, _ := setupMockEnvironment(t)
		ds.On("GetUser", "ghost").Return(nil, userNotFound()).Once()

		rec := doJSON(t, e, http.MethodPost, "/api/users/change_password", map[string]string{
			"username": "ghost", "current_password": "x", "new_password": "y",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decode(t, rec)["message"])
	})
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name     string
		dsUser   *datastore.User
		dsErr    error
		wantCode int
		wantMsg  string
	}{
		{"success", &datastore.User{Username: "alicia"}, nil, http.StatusOK, "Profile updated successfully"},
		{"unknown user", nil, userNotFound(), http.StatusNotFound, "User not found"},
		{"no changes", nil, errors.New(datastore.ErrNoChanges).Category(errors.CategoryValidation).Build(), http.StatusBadRequest, "Profile update failed"},
		{"name taken", nil, errors.New(datastore.ErrUsernameTaken).Category(errors.CategoryConflict).Build(), http.StatusBadRequest, "Profile update failed"},
		{"database failure", nil, fmt.Errorf("locked"), http.StatusInternalServerError, "Error updating profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ds, _ := setupMockEnvironment(t)
			ds.On("UpdateProfile", "alice", "alicia", "/static/a.png").Return(tt.dsUser, tt.dsErr).Once()

			rec := doJSON(t, e, http.MethodPost, "/api/users/update_profile", map[string]string{
				"current_username": "alice", "username": "alicia", "profile_picture_url": "/static/a.png",
			})
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, "alicia", body["user"].(map[string]any)["username"])
			} else {
				assert.Equal(t, "error", body["status"])
			}
		})
	}
}

func TestSaveLocation(t *testing.T) {
	e, ds, _ := setupMockEnvironment(t)
	ds.On("SaveLocation", "alice", 45.5, -122.5).Return(nil).Once()
	ds.On("SaveLocation", "ghost", 0.0, 0.0).Return(userNotFound()).Once()

	rec := doJSON(t, e, http.MethodPost, "/api/users/save_location", map[string]any{"username": "alice", "latitude": 45.5, "longitude": -122.5})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Location saved successfully", decode(t, rec)["message"])

	rec = doJSON(t, e, http.MethodPost, "/api/users/save_location", map[string]any{"username": "ghost", "latitude": 0, "longitude": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/users/save_location", map[string]any{"username": "alice", "latitude": 95, "longitude": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "latitude")

	rec = doJSON(t, e, http.MethodPost, "/api/users/save_location", map[string]any{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimiter_Login(t *testing.T) {
	ds := &MockDataStore{}
	settings := testSettings()
	settings.WebServer.RateLimit.Enabled = true
	settings.WebServer.RateLimit.RequestsPerMinute = 1
	settings.WebServer.RateLimit.Burst = 2
	e, _, m := setupTestEnvironment(t, ds, settings)

	ds.On("GetUser", "alice").Return(nil, userNotFound())

	for range 2 {
		rec := doJSON(t, e, http.MethodPost, "/api/users/login", map[string]string{"username": "alice", "password": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := doJSON(t, e, http.MethodPost, "/api/users/login", map[string]string{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotNil(t, m.HTTP)
}
