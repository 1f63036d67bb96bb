// config.go: settings struct and the functions that load it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// EnvPrefix is prepended to environment overrides, e.g. TRAILTRACKER_WEBSERVER_PORT.
const EnvPrefix = "TRAILTRACKER"

// RateLimitSettings throttles the credential endpoints.
type RateLimitSettings struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsperminute"`
	Burst             int  `yaml:"burst"`
}

// WebServerSettings contains settings for the HTTP API.
type WebServerSettings struct {
	Listen    string            `yaml:"listen"`   // address to bind
	Port      string            `yaml:"port"`     // port to listen on
	MediaDir  string            `yaml:"mediadir"` // directory served under /uploads
	RateLimit RateLimitSettings `yaml:"ratelimit"`
}

// Address returns the host:port pair to listen on.
func (w *WebServerSettings) Address() string {
	return w.Listen + ":" + w.Port
}

// SQLiteSettings contains settings for the SQLite database.
type SQLiteSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MySQLSettings contains settings for the MySQL database.
type MySQLSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
}

// OutputSettings selects the database backend.
type OutputSettings struct {
	SQLite SQLiteSettings `yaml:"sqlite"`
	MySQL  MySQLSettings  `yaml:"mysql"`
}

// CacheSettings controls the upload summary cache.
type CacheSettings struct {
	SummaryTTL time.Duration `yaml:"summaryttl"` // 0 disables caching
}

// MQTTSettings contains settings for scan event publishing.
type MQTTSettings struct {
	Enabled        bool          `yaml:"enabled"`
	Broker         string        `yaml:"broker"`
	Topic          string        `yaml:"topic"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ClientID       string        `yaml:"clientid"`
	PublishTimeout time.Duration `yaml:"publishtimeout"`
}

// SentrySettings contains settings for error telemetry.
type SentrySettings struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// Settings contains all configuration options for the TrailTracker service.
type Settings struct {
	Debug bool `yaml:"debug"`

	Main struct {
		Name string `yaml:"name"`
	} `yaml:"main"`

	WebServer WebServerSettings    `yaml:"webserver"`
	Output    OutputSettings       `yaml:"output"`
	Cache     CacheSettings        `yaml:"cache"`
	MQTT      MQTTSettings         `yaml:"mqtt"`
	Sentry    SentrySettings       `yaml:"sentry"`
	Logging   logger.LoggingConfig `yaml:"logging"`
}

// Load reads the configuration through the global viper instance, which carries
// the command line flags bound by cmd. configFile may be empty to search the
// default locations.
func Load(configFile string) (*Settings, error) {
	return LoadWith(viper.GetViper(), configFile)
}

// LoadWith reads defaults, the config file and environment overrides into a new Settings
// using v, then validates the result.
func LoadWith(v *viper.Viper, configFile string) (*Settings, error) {
	if err := initViper(v, configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal-config").
			Build()
	}

	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

func initViper(v *viper.Viper, configFile string) error {
	v.SetConfigType("yaml")
	setDefaultConfig(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.New(err).
				Category(errors.CategoryConfiguration).
				Context("operation", "read-config").
				Context("config_file", configFile).
				Build()
		}
		return nil
	}

	v.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	err = v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	// First run: write the embedded defaults where the next run will find them
	configPath, err := createDefaultConfig(configPaths[0])
	if err != nil {
		return err
	}
	v.SetConfigFile(configPath)
	return v.ReadInConfig()
}

// createDefaultConfig writes the embedded config.yaml into dir and returns its path.
func createDefaultConfig(dir string) (string, error) {
	configPath := filepath.Join(dir, "config.yaml")

	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return "", fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return "", errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "write-default-config").
			Build()
	}

	fmt.Println("Created default config file at:", configPath)
	return configPath, nil
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		// embedded at build time; unreachable
		panic(err)
	}
	return data
}

const redacted = "[redacted]"

// YAML renders the effective settings. Secrets are masked when redact is true.
func (s *Settings) YAML(redact bool) ([]byte, error) {
	out := *s
	if redact {
		if out.Output.MySQL.Password != "" {
			out.Output.MySQL.Password = redacted
		}
		if out.MQTT.Password != "" {
			out.MQTT.Password = redacted
		}
		if out.Sentry.DSN != "" {
			out.Sentry.DSN = redacted
		}
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return data, nil
}
