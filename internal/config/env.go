package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"vibration-viewer/internal/domain"
)

// Environment keys that override persisted settings.
const (
	EnvAnalyzerCommand = "VIBRATION_ANALYZER_COMMAND"
	EnvAnalyzerArgs    = "VIBRATION_ANALYZER_ARGS"
	EnvInputExtensions = "VIBRATION_INPUT_EXTS"
	EnvLogLevel        = "VIBRATION_LOG_LEVEL"
	EnvLogEncoding     = "VIBRATION_LOG_ENCODING"
)

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are ignored; existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overlays environment variables on top of settings.
func ApplyEnv(settings domain.Settings) domain.Settings {
	if v, ok := lookup(EnvAnalyzerCommand); ok {
		settings.AnalyzerCommand = v
	}
	if v, ok := lookup(EnvAnalyzerArgs); ok {
		settings.AnalyzerArgs = strings.Fields(v)
	}
	if v, ok := lookup(EnvInputExtensions); ok {
		settings.InputExtensions = splitList(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		settings.LogLevel = v
	}
	if v, ok := lookup(EnvLogEncoding); ok {
		settings.LogEncoding = v
	}
	return Normalize(settings)
}

// Normalize trims user input and restores defaults for required fields.
func Normalize(settings domain.Settings) domain.Settings {
	defaults := DefaultSettings()

	settings.AnalyzerCommand = strings.TrimSpace(settings.AnalyzerCommand)
	if settings.AnalyzerCommand == "" {
		settings.AnalyzerCommand = defaults.AnalyzerCommand
	}

	args := make([]string, 0, len(settings.AnalyzerArgs))
	for _, arg := range settings.AnalyzerArgs {
		if arg = strings.TrimSpace(arg); arg != "" {
			args = append(args, arg)
		}
	}
	settings.AnalyzerArgs = args

	exts := make([]string, 0, len(settings.InputExtensions))
	for _, ext := range settings.InputExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = defaults.InputExtensions
	}
	settings.InputExtensions = exts

	settings.LogLevel = strings.TrimSpace(settings.LogLevel)
	if settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}
	settings.LogEncoding = strings.TrimSpace(settings.LogEncoding)
	if settings.LogEncoding == "" {
		settings.LogEncoding = defaults.LogEncoding
	}
	return settings
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
