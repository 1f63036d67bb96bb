// Package telemetry wires error reporting to Sentry.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
)

// flushTimeout bounds how long Flush waits for queued events on shutdown.
const flushTimeout = 2 * time.Second

// InitSentry initializes Sentry when enabled in settings and installs the
// errors package reporter. It is a no-op when Sentry is disabled.
func InitSentry(settings *conf.Settings, version string, log logger.Logger) error {
	return initSentry(settings, version, log, nil)
}

func initSentry(settings *conf.Settings, version string, log logger.Logger, transport sentry.Transport) error {
	if !settings.Sentry.Enabled {
		errors.SetTelemetryReporter(nil)
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "",
		Release:          fmt.Sprintf("trailtracker@%s", version),
		Transport:        transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	if log != nil {
		log.Info("error telemetry enabled", logger.String("release", version))
	}
	return nil
}

// applyPrivacyFilters drops user, host and request details from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// Flush waits for queued events to be delivered.
func Flush() {
	if errors.GetTelemetryReporter() != nil {
		sentry.Flush(flushTimeout)
	}
}
