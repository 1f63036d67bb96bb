// internal/api/v2/middleware.go
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// HeaderRequestID carries the per request correlation id.
const HeaderRequestID = echo.HeaderXRequestID

// RequestIDMiddleware assigns each request an id, echoes it in the response
// header and attaches it to the request context as the log trace id.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			id := req.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			ctx.Response().Header().Set(HeaderRequestID, id)
			ctx.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), id)))
			return next(ctx)
		}
	}
}

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(access logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			req := ctx.Request()
			res := ctx.Response()
			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.String("query", req.URL.RawQuery),
				logger.Int("status", res.Status),
				logger.String("ip", ctx.RealIP()),
				logger.String("user_agent", req.UserAgent()),
				logger.Int64("bytes_out", res.Size),
				logger.Duration("latency", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, logger.Error(err))
			}
			access.WithContext(req.Context()).Info("request", fields...)

			return nil
		}
	}
}

// MetricsMiddleware records request counts, latency and response sizes.
// Paths are labelled by route pattern to bound cardinality.
func MetricsMiddleware(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			m.RequestStarted()
			defer m.RequestFinished()

			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			path := ctx.Path()
			if path == "" {
				path = "unmatched"
			}
			method := ctx.Request().Method
			m.RecordHTTPRequest(method, path, ctx.Response().Status, time.Since(start).Seconds())
			m.RecordHTTPResponseSize(method, path, ctx.Response().Size)

			return nil
		}
	}
}

// RateLimiter throttles credential endpoints per client IP.
func (c *Controller) RateLimiter(settings conf.RateLimitSettings) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(settings.RequestsPerMinute) / 60.0),
		Burst:     settings.Burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			if c.metrics != nil {
				c.metrics.HTTP.RecordRateLimited(ctx.Path())
			}
			c.logger.Warn("rate limit exceeded",
				logger.String("ip", identifier),
				logger.String("path", ctx.Path()))
			return ctx.JSON(http.StatusTooManyRequests, MessageResponse{Message: "Too many requests, please try again later"})
		},
	})
}
