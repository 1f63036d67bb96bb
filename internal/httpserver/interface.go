// Package httpserver hosts the trail tracker HTTP API on echo.
package httpserver

import (
	"context"

	api "github.com/trailtracker/trailtracker/internal/api/v2"
)

// Runner is the lifecycle the serve command drives.
type Runner interface {
	// Start serves requests until ctx is cancelled, then shuts down gracefully.
	// It returns nil after a clean shutdown.
	Start(ctx context.Context) error

	// Shutdown stops accepting connections and waits for in-flight requests.
	Shutdown(ctx context.Context) error

	// APIController returns the API controller, or nil before New completes.
	APIController() *api.Controller
}

var _ Runner = (*Server)(nil)
