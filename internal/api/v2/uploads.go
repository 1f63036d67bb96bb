// internal/api/v2/uploads.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trailtracker/trailtracker/internal/analytics"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/mqtt"
)

// InvalidSummaryMessage is the reply to a summary request with a bad axis or filter.
const InvalidSummaryMessage = "Invalid sort option or filter value"

// LogScanRequest is the body of POST /api/users/log-scan
type LogScanRequest struct {
	Username   string `json:"username"`
	FilePath   string `json:"filepath" validate:"required,max=512"`
	CameraID   string `json:"camera_id" validate:"max=191"`
	Animal     string `json:"animal" validate:"max=191"`
	PulledData string `json:"pulled_data"`
	Date       string `json:"date" validate:"max=32"`
	Time       string `json:"time" validate:"max=32"`
}

// DeleteUploadRequest is the body of DELETE /api/users/delete_upload
type DeleteUploadRequest struct {
	Username string `json:"username"`
	FilePath string `json:"filepath"`
}

// SummaryRequest is the body of POST /api/users/get_uploads
type SummaryRequest struct {
	Username    string `json:"username"`
	SortBy      string `json:"sort_by"`
	FilterValue string `json:"filter_value"`
}

// SummaryResponse is the success reply of POST /api/users/get_uploads
type SummaryResponse struct {
	Status          string                   `json:"status"`
	Uploads         []analytics.GroupedCount `json:"uploads"`
	Recommendations []string                 `json:"recommendations"`
}

// LogScan handles POST /api/users/log-scan
func (c *Controller) LogScan(ctx echo.Context) error {
	var req LogScanRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleMessageError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	upload := &datastore.Upload{
		FilePath:   req.FilePath,
		CameraID:   req.CameraID,
		Animal:     req.Animal,
		PulledData: req.PulledData,
		Date:       req.Date,
		Time:       req.Time,
	}
	err := c.DS.LogUpload(req.Username, upload)
	c.recordOperation("log_scan", err)
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrDuplicateUpload):
			return c.HandleMessageError(ctx, err, "File already uploaded", http.StatusBadRequest)
		case errors.IsNotFound(err):
			return c.HandleMessageError(ctx, err, "User not found", http.StatusNotFound)
		default:
			return c.HandleMessageError(ctx, err, "Error logging scan", http.StatusInternalServerError)
		}
	}

	c.invalidateSummaries(req.Username)
	c.publisher.PublishScan(ctx.Request().Context(), mqtt.ScanEvent{
		Username: req.Username,
		FilePath: req.FilePath,
		CameraID: req.CameraID,
		Animal:   req.Animal,
		Date:     req.Date,
		Time:     req.Time,
	})

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Scan logged successfully"})
}

// DeleteUpload handles DELETE /api/users/delete_upload
func (c *Controller) DeleteUpload(ctx echo.Context) error {
	var req DeleteUploadRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleMessageError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	err := c.DS.DeleteUpload(req.Username, req.FilePath)
	c.recordOperation("delete_upload", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleMessageError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleMessageError(ctx, err, "Error deleting upload", http.StatusInternalServerError)
	}

	c.invalidateSummaries(req.Username)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Upload deleted successfully"})
}

// GetUploadsByCamera handles POST /api/users/get_uploads_by_camera/:camera_id
func (c *Controller) GetUploadsByCamera(ctx echo.Context) error {
	cameraID := ctx.Param("camera_id")

	var req UsernameRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return c.HandleError(ctx, err, err.Error(), http.StatusBadRequest)
	}

	uploads, err := c.DS.GetUploadsByCamera(req.Username, cameraID)
	c.recordOperation("get_uploads_by_camera", err)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error fetching uploads", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{"status": statusSuccess, "uploads": uploads})
}

// GetUploads handles POST /api/users/get_uploads. It groups the user's uploads
// along sort_by, filtered by filter_value, and recommends the top group.
func (c *Controller) GetUploads(ctx echo.Context) error {
	start := time.Now()

	var req SummaryRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, InvalidSummaryMessage, http.StatusBadRequest)
	}

	if summary, ok := c.cachedSummary(req.Username, req.SortBy, req.FilterValue); ok {
		return ctx.JSON(http.StatusOK, summaryResponse(summary))
	}

	gen := c.summaryGeneration(req.Username)
	snapshot, err := c.DS.GetSnapshot(req.Username)
	if err != nil {
		c.recordOperation("get_uploads", err)
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "User not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Error fetching uploads", http.StatusInternalServerError)
	}

	axis, err := analytics.ParseAxis(req.SortBy)
	if err != nil {
		c.recordOperation("get_uploads", err)
		return c.HandleError(ctx, err, InvalidSummaryMessage, http.StatusBadRequest)
	}

	summary, err := c.engine.Summarize(ctx.Request().Context(), snapshot.Uploads, snapshot.Pins, axis, req.FilterValue)
	c.recordOperation("get_uploads", err)
	if err != nil {
		if errors.IsValidation(err) {
			return c.HandleError(ctx, err, InvalidSummaryMessage, http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "Error computing summary", http.StatusInternalServerError)
	}

	if !c.storeSummary(req.Username, req.SortBy, req.FilterValue, gen, summary) && c.summaryCache != nil {
		c.logger.Debug("summary not cached, uploads changed while computing",
			logger.String("username", req.Username))
	}

	c.logger.WithContext(ctx.Request().Context()).Debug("upload summary served",
		logger.String("username", req.Username),
		logger.Strings("recommendations", summary.Recommendations),
		elapsed(start))

	return ctx.JSON(http.StatusOK, summaryResponse(summary))
}

func summaryResponse(s analytics.Summary) SummaryResponse {
	return SummaryResponse{
		Status:          statusSuccess,
		Uploads:         s.Groups,
		Recommendations: s.Recommendations,
	}
}
