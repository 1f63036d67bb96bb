// internal/httpserver/server.go
package httpserver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	api "github.com/trailtracker/trailtracker/internal/api/v2"
	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability"
)

const (
	shutdownTimeout = 10 * time.Second
	bodyLimit       = "2M"
)

// Server encapsulates the echo instance and the API mounted on it.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	API      *api.Controller

	metrics    *observability.Metrics
	logger     logger.Logger
	access     logger.Logger
	apiOptions []api.Option
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes m on /metrics and records request metrics into it.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server's own logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAccessLogger sets the logger receiving one line per request.
func WithAccessLogger(l logger.Logger) Option {
	return func(s *Server) { s.access = l }
}

// WithAPIOptions passes options through to the API controller.
func WithAPIOptions(opts ...api.Option) Option {
	return func(s *Server) { s.apiOptions = append(s.apiOptions, opts...) }
}

// New builds the echo instance, installs middleware and mounts the API.
func New(settings *conf.Settings, ds datastore.Interface, opts ...Option) (*Server, error) {
	configureDefaultSettings(settings)

	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Global().Module("http")
	}
	if s.access == nil {
		s.access = logger.Global().Module("access")
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	// Requests are logged by LoggingMiddleware
	s.Echo.Logger.SetOutput(io.Discard)

	s.configureMiddleware()
	s.initRoutes()

	apiOpts := []api.Option{api.WithLogger(s.logger.Module("api"))}
	if s.metrics != nil {
		apiOpts = append(apiOpts, api.WithMetrics(s.metrics))
	}
	apiOpts = append(apiOpts, s.apiOptions...)

	controller, err := api.New(s.Echo, ds, settings, apiOpts...)
	if err != nil {
		return nil, err
	}
	s.API = controller

	return s, nil
}

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(api.RequestIDMiddleware())
	s.Echo.Use(api.LoggingMiddleware(s.access))
	if s.metrics != nil {
		s.Echo.Use(api.MetricsMiddleware(s.metrics.HTTP))
	}
	s.Echo.Use(middleware.BodyLimit(bodyLimit))
	s.Echo.Use(middleware.CORS())
}

func (s *Server) initRoutes() {
	if dir := s.Settings.WebServer.MediaDir; dir != "" {
		s.Echo.Static("/uploads", dir)
	}
	if s.metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// configureDefaultSettings sets default values for server settings.
func configureDefaultSettings(settings *conf.Settings) {
	if settings.WebServer.Port == "" {
		settings.WebServer.Port = conf.DefaultPort
	}
}

// Address is the host:port the server binds to.
func (s *Server) Address() string {
	return s.Settings.WebServer.Address()
}

// APIController returns the mounted API controller.
func (s *Server) APIController() *api.Controller {
	return s.API
}

// Start serves requests until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if err := s.Echo.Start(s.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.New(err).
				Component("httpserver").
				Category(errors.CategoryNetwork).
				Context("address", s.Address()).
				Build()
		}
	}()

	s.logger.Info("HTTP server started", logger.String("address", s.Address()))

	select {
	case err := <-errCh:
		s.API.Shutdown()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

// Shutdown gracefully stops the server and releases the API's resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.API != nil {
		s.API.Shutdown()
	}
	if err := s.Echo.Shutdown(ctx); err != nil {
		return errors.New(err).
			Component("httpserver").
			Category(errors.CategoryNetwork).
			Context("operation", "shutdown").
			Build()
	}
	return nil
}
