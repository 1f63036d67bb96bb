package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/trailtracker/trailtracker/internal/errors"
)

// GetDefaultConfigPaths returns the directories searched for config.yaml, most
// specific first. If one of them already holds a config file it is returned alone.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	if runtime.GOOS == "windows" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, errors.New(err).
				Category(errors.CategorySystem).
				Context("operation", "get-executable-path").
				Build()
		}
		configPaths = []string{
			filepath.Dir(exePath),
			filepath.Join(homeDir, "AppData", "Roaming", "trailtracker"),
		}
	} else {
		configPaths = []string{
			filepath.Join(homeDir, ".config", "trailtracker"),
			"/etc/trailtracker",
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}
