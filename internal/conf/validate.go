// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/trailtracker/trailtracker/internal/errors"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ErrorCategory marks configuration problems for the errors package.
func (ve ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryConfiguration
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	for _, validate := range []func(*Settings) error{
		validateWebServerSettings,
		validateOutputSettings,
		validateCacheSettings,
		validateMQTTSettings,
		validateSentrySettings,
		validateLoggingSettings,
	} {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validatePort(name, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s port must be between 1 and 65535, got %q", name, port)
	}
	return nil
}

func validateWebServerSettings(settings *Settings) error {
	ws := &settings.WebServer
	if err := validatePort("webserver", ws.Port); err != nil {
		return err
	}
	if strings.TrimSpace(ws.MediaDir) == "" {
		return fmt.Errorf("webserver media directory is required")
	}
	if ws.RateLimit.Enabled && (ws.RateLimit.RequestsPerMinute < 1 || ws.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit requires positive requestsperminute and burst, got %d and %d",
			ws.RateLimit.RequestsPerMinute, ws.RateLimit.Burst)
	}
	return nil
}

func validateOutputSettings(settings *Settings) error {
	sqlite := settings.Output.SQLite
	mysql := settings.Output.MySQL

	switch {
	case sqlite.Enabled && mysql.Enabled:
		return fmt.Errorf("only one database may be enabled, both sqlite and mysql are")
	case !sqlite.Enabled && !mysql.Enabled:
		return fmt.Errorf("no database enabled, enable output.sqlite or output.mysql")
	case sqlite.Enabled && strings.TrimSpace(sqlite.Path) == "":
		return fmt.Errorf("sqlite path is required")
	case mysql.Enabled:
		if mysql.Host == "" || mysql.Database == "" || mysql.Username == "" {
			return fmt.Errorf("mysql host, database and username are required")
		}
		return validatePort("mysql", mysql.Port)
	}
	return nil
}

func validateCacheSettings(settings *Settings) error {
	if settings.Cache.SummaryTTL < 0 {
		return fmt.Errorf("cache summaryttl must not be negative, got %s", settings.Cache.SummaryTTL)
	}
	return nil
}

func validateMQTTSettings(settings *Settings) error {
	m := &settings.MQTT
	if !m.Enabled {
		return nil
	}
	if m.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	u, err := url.Parse(m.Broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("mqtt broker must be a URL such as tcp://host:1883, got %q", m.Broker)
	}
	if strings.TrimSpace(m.Topic) == "" || strings.ContainsAny(m.Topic, "#+") {
		return fmt.Errorf("mqtt topic must be a non-empty topic without wildcards, got %q", m.Topic)
	}
	if m.PublishTimeout <= 0 {
		return fmt.Errorf("mqtt publishtimeout must be positive")
	}
	return nil
}

func validateSentrySettings(settings *Settings) error {
	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		return fmt.Errorf("sentry dsn is required when sentry is enabled")
	}
	return nil
}

func validateLoggingSettings(settings *Settings) error {
	valid := map[string]bool{"": true, "trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !valid[settings.Logging.DefaultLevel] {
		return fmt.Errorf("invalid logging default_level %q", settings.Logging.DefaultLevel)
	}
	for module, level := range settings.Logging.ModuleLevels {
		if !valid[level] {
			return fmt.Errorf("invalid log level %q for module %s", level, module)
		}
	}
	return nil
}
