// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/trailtracker/trailtracker/internal/logger"
)

// Default values shared with validation and tests.
const (
	DefaultPort           = "5001"
	DefaultSQLitePath     = "trailtracker.db"
	DefaultMediaDir       = "uploads"
	DefaultSummaryTTL     = 5 * time.Minute
	DefaultPublishTimeout = 5 * time.Second
)

// setDefaultConfig registers a default for every key so that environment
// overrides are picked up by Unmarshal even when the file omits the key.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("main.name", "TrailTracker")

	v.SetDefault("webserver.listen", "0.0.0.0")
	v.SetDefault("webserver.port", DefaultPort)
	v.SetDefault("webserver.mediadir", DefaultMediaDir)
	v.SetDefault("webserver.ratelimit.enabled", true)
	v.SetDefault("webserver.ratelimit.requestsperminute", 20)
	v.SetDefault("webserver.ratelimit.burst", 5)

	v.SetDefault("output.sqlite.enabled", true)
	v.SetDefault("output.sqlite.path", DefaultSQLitePath)

	v.SetDefault("output.mysql.enabled", false)
	v.SetDefault("output.mysql.username", "trailtracker")
	v.SetDefault("output.mysql.password", "")
	v.SetDefault("output.mysql.database", "trailtracker")
	v.SetDefault("output.mysql.host", "localhost")
	v.SetDefault("output.mysql.port", "3306")

	v.SetDefault("cache.summaryttl", DefaultSummaryTTL)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "trailtracker")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.clientid", "trailtracker")
	v.SetDefault("mqtt.publishtimeout", DefaultPublishTimeout)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")

	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
}
