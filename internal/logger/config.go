package logger

import "time"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	DefaultLevel  string                  `yaml:"default_level" mapstructure:"default_level" json:"default_level"` // default log level for all modules
	Timezone      string                  `yaml:"timezone" mapstructure:"timezone" json:"timezone"`                // "Local", "UTC", or IANA timezone name
	Console       *ConsoleOutput          `yaml:"console" mapstructure:"console" json:"console"`                   // console output configuration
	FileOutput    *FileOutput             `yaml:"file_output" mapstructure:"file_output" json:"file_output"`       // main log file configuration
	ModuleOutputs map[string]ModuleOutput `yaml:"modules" mapstructure:"modules" json:"modules"`                   // per-module output configuration
	ModuleLevels  map[string]string       `yaml:"module_levels" mapstructure:"module_levels" json:"module_levels"` // per-module log levels
	BufferSize    int                     `yaml:"buffer_size" mapstructure:"buffer_size" json:"buffer_size"`          // file write buffer in bytes, 0 for the default
	FlushInterval time.Duration           `yaml:"flush_interval" mapstructure:"flush_interval" json:"flush_interval"` // file auto-flush interval, 0 for the default
}

// ConsoleOutput represents console logging configuration.
// Console output is text without timestamps; the process supervisor adds them.
type ConsoleOutput struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	Level   string `yaml:"level" mapstructure:"level" json:"level"`
}

// FileOutput represents file logging configuration. File output is JSON.
type FileOutput struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	Path    string `yaml:"path" mapstructure:"path" json:"path"`
	Level   string `yaml:"level" mapstructure:"level" json:"level"`
}

// ModuleOutput represents per-module output configuration
type ModuleOutput struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled" json:"enabled"`                // enable module-specific output
	FilePath    string `yaml:"file_path" mapstructure:"file_path" json:"file_path"`          // dedicated file path for this module
	Level       string `yaml:"level" mapstructure:"level" json:"level"`                      // log level override for this module
	ConsoleAlso bool   `yaml:"console_also" mapstructure:"console_also" json:"console_also"` // also log to console
}

const (
	DefaultLogLevel       = "info"
	DefaultLogPath        = "logs/trailtracker.log"
	DefaultAccessLogPath  = "logs/access.log"
	DefaultConsoleEnabled = true
	DefaultFileEnabled    = true
)

// ensureModuleOutput adds a default module output configuration if not already present.
func ensureModuleOutput(cfg *LoggingConfig, module, filePath string) {
	if _, exists := cfg.ModuleOutputs[module]; !exists {
		cfg.ModuleOutputs[module] = ModuleOutput{
			Enabled:  true,
			FilePath: filePath,
			Level:    DefaultLogLevel,
		}
	}
}

// applyConfigDefaults fills nil sections so configs written before a section existed
// keep console and file logging enabled.
func applyConfigDefaults(cfg *LoggingConfig) {
	if cfg == nil {
		return
	}

	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}

	if cfg.Console == nil {
		cfg.Console = &ConsoleOutput{
			Enabled: DefaultConsoleEnabled,
			Level:   DefaultLogLevel,
		}
	}

	if cfg.FileOutput == nil {
		cfg.FileOutput = &FileOutput{
			Enabled: DefaultFileEnabled,
			Path:    DefaultLogPath,
			Level:   DefaultLogLevel,
		}
	}

	if cfg.ModuleOutputs == nil {
		cfg.ModuleOutputs = make(map[string]ModuleOutput)
	}

	// HTTP request logs get their own file
	ensureModuleOutput(cfg, "access", DefaultAccessLogPath)
}
