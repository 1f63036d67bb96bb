// internal/api/v2/pins.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
)

// SavePinRequest is the body of POST /api/users/save_pin
type SavePinRequest struct {
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	CameraID  string  `json:"camera_id" validate:"required,max=191"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// UpdatePinRequest is the body of PUT /api/users/update_pin/:camera_id
type UpdatePinRequest struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	NewCameraID string  `json:"new_camera_id" validate:"required,max=191"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
}

// SavePin handles POST /api/users/save_pin
func (c *Controller) SavePin(ctx echo.Context) error {
	var req SavePinRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	pin := &datastore.Pin{
		Name:      req.Name,
		CameraID:  req.CameraID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	err := c.DS.SavePin(req.Username, pin)
	c.recordOperation("save_pin", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error saving pin", http.StatusInternalServerError)
	}

	c.invalidateSummaries(req.Username)
	return ctx.JSON(http.StatusOK, StatusResponse{Status: statusSuccess, Message: "Pin saved successfully"})
}

// GetPins handles POST /api/users/get_pins
func (c *Controller) GetPins(ctx echo.Context) error {
	var req UsernameRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	pins, err := c.DS.GetPins(req.Username)
	c.recordOperation("get_pins", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error fetching pins", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{"status": statusSuccess, "pins": pins})
}

// UpdatePin handles PUT /api/users/update_pin/:camera_id
func (c *Controller) UpdatePin(ctx echo.Context) error {
	cameraID := ctx.Param("camera_id")

	var req UpdatePinRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	err := c.DS.UpdatePin(req.Username, cameraID, datastore.PinUpdate{
		Name:      req.Name,
		CameraID:  req.NewCameraID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	c.recordOperation("update_pin", err)
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrPinNotFound):
			return c.HandleError(ctx, err, "Pin not found", http.StatusNotFound)
		case errors.Is(err, datastore.ErrUserNotFound):
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		default:
			return c.HandleError(ctx, err, "Error updating pin", http.StatusInternalServerError)
		}
	}

	c.invalidateSummaries(req.Username)
	return ctx.JSON(http.StatusOK, StatusResponse{Status: statusSuccess, Message: "Pin updated successfully"})
}

// DeletePin handles DELETE /api/users/delete_pin/:camera_id
func (c *Controller) DeletePin(ctx echo.Context) error {
	cameraID := ctx.Param("camera_id")

	var req UsernameRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	err := c.DS.DeletePin(req.Username, cameraID)
	c.recordOperation("delete_pin", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Pin not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error deleting pin", http.StatusInternalServerError)
	}

	c.invalidateSummaries(req.Username)
	return ctx.JSON(http.StatusOK, StatusResponse{Status: statusSuccess, Message: "Pin deleted successfully"})
}

// GetCameraIDs handles GET /api/users/get_camera_ids?username=
func (c *Controller) GetCameraIDs(ctx echo.Context) error {
	username := ctx.QueryParam("username")

	ids, err := c.DS.GetCameraIDs(username)
	c.recordOperation("get_camera_ids", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error fetching camera ids", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{"status": statusSuccess, "camera_ids": ids})
}
