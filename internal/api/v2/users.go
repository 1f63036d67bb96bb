// internal/api/v2/users.go
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trailtracker/trailtracker/internal/auth"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// RegisterRequest is the body of POST /api/users/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=191"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// LoginRequest is the body of POST /api/users/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UsernameRequest is the body of endpoints that only identify the user.
type UsernameRequest struct {
	Username string `json:"username"`
}

// ChangePasswordRequest is the body of POST /api/users/change_password
type ChangePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

// UpdateProfileRequest is the body of POST /api/users/update_profile
type UpdateProfileRequest struct {
	CurrentUsername   string `json:"current_username"`
	Username          string `json:"username" validate:"omitempty,max=191"`
	ProfilePictureURL string `json:"profile_picture_url" validate:"omitempty,max=512"`
}

// SaveLocationRequest is the body of POST /api/users/save_location
type SaveLocationRequest struct {
	Username  string   `json:"username"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message string          `json:"message"`
	User    *datastore.User `json:"user"`
}

// Register handles POST /api/users/register
func (c *Controller) Register(ctx echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleMessageError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	hash, err := c.hasher.HashPassword(req.Password)
	if err != nil {
		return c.HandleMessageError(ctx, err, "Error registering user", http.StatusInternalServerError)
	}

	user := &datastore.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
	}
	err = c.DS.CreateUser(user)
	c.recordOperation("register", err)
	if err != nil {
		if errors.IsConflict(err) {
			return c.HandleMessageError(ctx, err, "Username already exists. Try a different one.", http.StatusBadRequest)
		}
		return c.HandleMessageError(ctx, err, "Error registering user", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("User %s registered successfully!", req.Username),
	})
}

// Login handles POST /api/users/login
func (c *Controller) Login(ctx echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		c.recordAuth(metrics.StatusError)
		return c.HandleMessageError(ctx, err, "Invalid username or password", http.StatusBadRequest)
	}

	user, err := c.DS.GetUser(req.Username)
	if err != nil {
		c.recordAuth(metrics.StatusError)
		if errors.IsNotFound(err) {
			return c.HandleMessageError(ctx, nil, "Invalid username or password", http.StatusBadRequest)
		}
		return c.HandleMessageError(ctx, err, "Error logging in", http.StatusInternalServerError)
	}

	if err := c.hasher.CheckPassword(user.PasswordHash, req.Password); err != nil {
		c.recordAuth(metrics.StatusError)
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return c.HandleMessageError(ctx, nil, "Invalid username or password", http.StatusBadRequest)
		}
		return c.HandleMessageError(ctx, err, "Error logging in", http.StatusInternalServerError)
	}

	c.recordAuth(metrics.StatusSuccess)
	c.logger.Info("user logged in",
		logger.String("username", user.Username),
		logger.String("ip", ctx.RealIP()))
	return ctx.JSON(http.StatusOK, LoginResponse{Message: "Login successful", User: user})
}

func (c *Controller) recordAuth(status string) {
	if c.metrics != nil {
		c.metrics.HTTP.RecordAuthOperation("login", status)
	}
}

// ListUsers handles GET /api/users
func (c *Controller) ListUsers(ctx echo.Context) error {
	users, err := c.DS.ListUsers()
	c.recordOperation("list_users", err)
	if err != nil {
		return c.HandleMessageError(ctx, err, "Error fetching users", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"users": users})
}

// GetProfile handles POST /api/users/profile
func (c *Controller) GetProfile(ctx echo.Context) error {
	var req UsernameRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleMessageError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	user, err := c.DS.GetUser(req.Username)
	c.recordOperation("profile", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleMessageError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleMessageError(ctx, err, "Error fetching user profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"user": user})
}

// ChangePassword handles POST /api/users/change_password
func (c *Controller) ChangePassword(ctx echo.Context) error {
	var req ChangePasswordRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleMessageError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	user, err := c.DS.GetUser(req.Username)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleMessageError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleMessageError(ctx, err, "Error changing password", http.StatusInternalServerError)
	}

	if err := c.hasher.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return c.HandleMessageError(ctx, nil, "Current password is incorrect", http.StatusBadRequest)
		}
		return c.HandleMessageError(ctx, err, "Error changing password", http.StatusInternalServerError)
	}

	hash, err := c.hasher.HashPassword(req.NewPassword)
	if err == nil {
		err = c.DS.UpdatePassword(req.Username, hash)
	}
	c.recordOperation("change_password", err)
	if err != nil {
		return c.HandleMessageError(ctx, err, "Error changing password", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

// UpdateProfile handles POST /api/users/update_profile
func (c *Controller) UpdateProfile(ctx echo.Context) error {
	var req UpdateProfileRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	user, err := c.DS.UpdateProfile(req.CurrentUsername, req.Username, req.ProfilePictureURL)
	c.recordOperation("update_profile", err)
	if err != nil {
		switch statusForError(err) {
		case http.StatusNotFound:
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		case http.StatusBadRequest:
			return c.HandleError(ctx, err, "Profile update failed", http.StatusBadRequest)
		default:
			return c.HandleError(ctx, err, "Error updating profile", http.StatusInternalServerError)
		}
	}

	c.invalidateSummaries(req.CurrentUsername)
	c.invalidateSummaries(user.Username)

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// SaveLocation handles POST /api/users/save_location
func (c *Controller) SaveLocation(ctx echo.Context) error {
	var req SaveLocationRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleMessageError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	err := c.DS.SaveLocation(req.Username, *req.Latitude, *req.Longitude)
	c.recordOperation("save_location", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleMessageError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleMessageError(ctx, err, "Error saving location", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Location saved successfully"})
}
