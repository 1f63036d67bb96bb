// internal/api/v2/api.go
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/trailtracker/trailtracker/internal/analytics"
	"github.com/trailtracker/trailtracker/internal/auth"
	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/mqtt"
	"github.com/trailtracker/trailtracker/internal/observability"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// WelcomeMessage is served on GET /.
const WelcomeMessage = "Welcome to the Trail Tracker API"

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	engine       *analytics.Engine
	hasher       *auth.Hasher
	publisher    mqtt.Publisher
	summaryCache *cache.Cache // nil when caching is disabled
	summaryMu    sync.Mutex
	summaryGen   map[string]uint64 // per-user write generation, guarded by summaryMu
	logger       logger.Logger
	metrics      *observability.Metrics
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithPublisher sets the scan event publisher.
func WithPublisher(p mqtt.Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

// WithMetrics sets the shared metrics instance.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithLogger sets the api module logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithHasher overrides the password hasher, mostly to lower the bcrypt cost in tests.
func WithHasher(h *auth.Hasher) Option {
	return func(c *Controller) {
		c.hasher = h
	}
}

// New creates the API controller and registers its routes on e.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, opts ...Option) (*Controller, error) {
	if ds == nil {
		return nil, errors.New(errors.NewStd("datastore is required")).
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Controller{
		Echo:      e,
		DS:        ds,
		Settings:  settings,
		hasher:    auth.NewHasher(auth.DefaultCost),
		publisher: mqtt.NoopPublisher{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Global().Module("api")
	}

	var analyticsMetrics *metrics.AnalyticsMetrics
	if c.metrics != nil {
		analyticsMetrics = c.metrics.Analytics
	}
	c.engine = analytics.NewEngine(c.logger.Module("analytics"), analyticsMetrics)

	if ttl := settings.Cache.SummaryTTL; ttl > 0 {
		c.summaryCache = cache.New(ttl, 2*ttl)
		c.summaryGen = make(map[string]uint64)
	}

	c.Group = e.Group("/api/users")
	c.initRoutes()

	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Echo.GET("/", c.Welcome)

	credentials := []echo.MiddlewareFunc{}
	if rl := c.Settings.WebServer.RateLimit; rl.Enabled {
		credentials = append(credentials, c.RateLimiter(rl))
	}

	c.Group.POST("/register", c.Register, credentials...)
	c.Group.POST("/login", c.Login, credentials...)
	c.Group.GET("", c.ListUsers)
	c.Group.POST("/profile", c.GetProfile)
	c.Group.POST("/change_password", c.ChangePassword)
	c.Group.POST("/update_profile", c.UpdateProfile)
	c.Group.POST("/save_location", c.SaveLocation)

	c.Group.POST("/save_pin", c.SavePin)
	c.Group.POST("/get_pins", c.GetPins)
	c.Group.PUT("/update_pin/:camera_id", c.UpdatePin)
	c.Group.DELETE("/delete_pin/:camera_id", c.DeletePin)
	c.Group.GET("/get_camera_ids", c.GetCameraIDs)

	c.Group.POST("/log-scan", c.LogScan)
	c.Group.DELETE("/delete_upload", c.DeleteUpload)
	c.Group.POST("/get_uploads_by_camera/:camera_id", c.GetUploadsByCamera)
	c.Group.POST("/get_uploads", c.GetUploads)
}

// Welcome handles GET /
func (c *Controller) Welcome(ctx echo.Context) error {
	return ctx.String(http.StatusOK, WelcomeMessage)
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.summaryCache != nil {
		c.summaryCache.Flush()
	}
	c.logger.Debug("API controller shut down")
}

// StatusResponse is the {status, message} reply used by the pin and upload endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageResponse is the {message} reply used by the account endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// HandleError logs err and replies with {status:"error", message}.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	c.logError(ctx, err, message, code)
	return ctx.JSON(code, StatusResponse{Status: statusError, Message: message})
}

// HandleMessageError logs err and replies with {message}.
func (c *Controller) HandleMessageError(ctx echo.Context, err error, message string, code int) error {
	c.logError(ctx, err, message, code)
	return ctx.JSON(code, MessageResponse{Message: message})
}

func (c *Controller) logError(ctx echo.Context, err error, message string, code int) {
	fields := []logger.Field{
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}

	log := c.logger.WithContext(ctx.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Debug("API error", fields...)
	}

	if c.metrics != nil && err != nil {
		c.metrics.HTTP.RecordHandlerOperationError(ctx.Path(), string(errorCategory(err)))
	}
}

// statusForError maps an error category to an HTTP status code.
func statusForError(err error) int {
	switch errorCategory(err) {
	case errors.CategoryValidation, errors.CategoryConflict:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorCategory(err error) errors.ErrorCategory {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return enhanced.Category
	}
	var categorized errors.CategorizedError
	if errors.As(err, &categorized) {
		return categorized.ErrorCategory()
	}
	return errors.CategoryGeneric
}

// recordOperation counts a handler outcome.
func (c *Controller) recordOperation(handler string, err error) {
	if c.metrics == nil {
		return
	}
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	c.metrics.HTTP.RecordHandlerOperation(handler, status)
}

// elapsed is a small helper for debug timing fields.
func elapsed(start time.Time) logger.Field {
	return logger.Duration("duration", time.Since(start))
}
