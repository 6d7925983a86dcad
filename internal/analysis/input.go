package analysis

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ResultsDirName is the analyzer's output directory inside the input folder.
	ResultsDirName = "results"
	// ResultsFileName is the tabular output written by the analyzer.
	ResultsFileName = "F0_Analysis.csv"
)

// ErrNoInput is returned when a folder has no eligible source files.
var ErrNoInput = errors.New("no eligible input files")

// ErrNotFolder is returned when the selected path is not a directory.
var ErrNotFolder = errors.New("not a folder")

// ResultsPath returns where the analyzer writes its output for folder.
func ResultsPath(folderPath string) string {
	return filepath.Join(folderPath, ResultsDirName, ResultsFileName)
}

// ValidateFolder checks that path exists and is a directory.
func ValidateFolder(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("folder path is required: %w", ErrNotFolder)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access folder %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotFolder)
	}
	return nil
}

// FindInputs lists files directly inside folder whose extension is eligible.
// Names are sorted; ErrNoInput is returned when nothing matches.
func FindInputs(folderPath string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folderPath, err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", folderPath, ErrNoInput)
	}

	sort.Strings(names)
	return names, nil
}
