package config

import (
	"os"
	"path/filepath"

	"vibration-viewer/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		AnalyzerCommand: "python",
		AnalyzerArgs:    []string{"vibration_analysis.py"},
		InputExtensions: []string{".csv"},
		LogLevel:        "info",
		LogEncoding:     "console",
	}
}

// DefaultPath returns the settings file location under the user's home.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".vibration-viewer", "settings.json"), nil
}
