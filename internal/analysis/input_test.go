package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestFindInputsFiltersByExtension checks eligible file discovery.
func TestFindInputsFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "b.CSV"), "x")
	mustWriteFile(t, filepath.Join(root, "a.csv"), "x")
	mustWriteFile(t, filepath.Join(root, "notes.txt"), "x")
	mustWriteFile(t, filepath.Join(root, "results", "F0_Analysis.csv"), "x")

	got, err := FindInputs(root, []string{".csv"})
	if err != nil {
		t.Fatalf("FindInputs() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a.csv" || got[1] != "b.CSV" {
		t.Fatalf("inputs = %v", got)
	}
}

// TestFindInputsNoInput checks the no-input error.
func TestFindInputsNoInput(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "readme.md"), "x")

	if _, err := FindInputs(root, []string{".csv"}); !errors.Is(err, ErrNoInput) {
		t.Fatalf("error = %v, want ErrNoInput", err)
	}
}

// TestValidateFolder checks existence and directory checks.
func TestValidateFolder(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.csv")
	mustWriteFile(t, file, "x")

	if err := ValidateFolder(root); err != nil {
		t.Fatalf("ValidateFolder(dir) error = %v", err)
	}
	if err := ValidateFolder(file); !errors.Is(err, ErrNotFolder) {
		t.Fatalf("ValidateFolder(file) error = %v, want ErrNotFolder", err)
	}
	if err := ValidateFolder(filepath.Join(root, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ValidateFolder(missing) error = %v, want not exist", err)
	}
	if err := ValidateFolder(" "); !errors.Is(err, ErrNotFolder) {
		t.Fatalf("ValidateFolder(blank) error = %v", err)
	}
}

// mustWriteFile creates parent directory and writes file content.
func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
