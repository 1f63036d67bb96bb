// env.go - validated environment variable bindings
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings lists the variables that get explicit bindings and value checks.
// Every other key is still reachable through AutomaticEnv.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "TRAILTRACKER_DEBUG", validateEnvBool},
		{"webserver.port", "TRAILTRACKER_WEBSERVER_PORT", validateEnvPort},
		// PORT is honoured for platforms that inject it
		{"webserver.port", "PORT", validateEnvPort},
		{"output.sqlite.path", "TRAILTRACKER_OUTPUT_SQLITE_PATH", validateEnvNonEmpty},
		{"output.mysql.port", "TRAILTRACKER_OUTPUT_MYSQL_PORT", validateEnvPort},
		{"mqtt.enabled", "TRAILTRACKER_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "TRAILTRACKER_MQTT_BROKER", validateEnvBroker},
		{"sentry.enabled", "TRAILTRACKER_SENTRY_ENABLED", validateEnvBool},
	}
}

// bindEnvVars binds the explicit variables and validates their values.
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	// viper.BindEnv takes all names for one key in a single call
	names := make(map[string][]string)
	var keys []string
	for _, binding := range getEnvBindings() {
		if _, ok := names[binding.ConfigKey]; !ok {
			keys = append(keys, binding.ConfigKey)
		}
		names[binding.ConfigKey] = append(names[binding.ConfigKey], binding.EnvVar)

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	for _, key := range keys {
		input := append([]string{key}, names[key]...)
		if err := v.BindEnv(input...); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", key, err))
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvNonEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("must not be blank")
	}
	return nil
}

func validateEnvBroker(value string) error {
	if !strings.Contains(value, "://") {
		return fmt.Errorf("must include a scheme, e.g. tcp://host:1883")
	}
	return nil
}
