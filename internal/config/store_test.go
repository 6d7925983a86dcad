package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vibration-viewer/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.AnalyzerCommand != "python" {
		t.Fatalf("analyzer command = %q, want python", cfg.AnalyzerCommand)
	}
	if len(cfg.AnalyzerArgs) != 1 || cfg.AnalyzerArgs[0] != "vibration_analysis.py" {
		t.Fatalf("analyzer args = %v", cfg.AnalyzerArgs)
	}
	if len(cfg.InputExtensions) != 1 || cfg.InputExtensions[0] != ".csv" {
		t.Fatalf("input extensions = %v", cfg.InputExtensions)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AnalyzerCommand != "python" {
		t.Fatalf("analyzer command = %q, want python", got.AnalyzerCommand)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		AnalyzerCommand: "/opt/analyzer/bin/f0",
		AnalyzerArgs:    []string{"--fast"},
		InputExtensions: []string{".csv", ".wav"},
		LogLevel:        "debug",
		LogEncoding:     "json",
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadPartialFileKeepsDefaults checks that absent keys fall back.
func TestJSONStoreLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"analyzerCommand":"python3"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AnalyzerCommand != "python3" {
		t.Fatalf("analyzer command = %q", got.AnalyzerCommand)
	}
	if len(got.AnalyzerArgs) != 1 || got.AnalyzerArgs[0] != "vibration_analysis.py" {
		t.Fatalf("analyzer args = %v", got.AnalyzerArgs)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
