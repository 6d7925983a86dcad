package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"vibration-viewer/internal/domain"
)

// Checker validates the analyzer command and its script before a run.
type Checker struct {
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkCommand(settings.AnalyzerCommand),
		c.checkScript(settings.AnalyzerArgs),
		checkInputExtensions(settings.InputExtensions),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkCommand verifies the analyzer executable resolves on PATH.
func (c *Checker) checkCommand(name string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "analyzer_command",
		Name: "Analyzer command",
	}

	name = strings.TrimSpace(name)
	if name == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Analyzer command is empty."
		item.Hint = "Set the interpreter or executable that runs the analysis, e.g. python."
		return item
	}

	path, err := c.lookPath(name)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Command not found in PATH: %s", name)
		item.Hint = "Install it and ensure the binary is available on PATH before starting an analysis."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkScript verifies the analyzer script exists when the first argument names one.
func (c *Checker) checkScript(args []string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "analyzer_script",
		Name: "Analyzer script",
	}

	script := scriptArg(args)
	if script == "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "No script argument configured."
		return item
	}

	info, err := c.stat(script)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Analyzer script does not exist: %s", script)
		} else {
			item.Message = fmt.Sprintf("Cannot access analyzer script: %s", script)
		}
		item.Hint = "Place the script next to the application or configure an absolute path in settings."
		return item
	}
	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Analyzer script is a directory: %s", script)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Script found: %s", script)
	return item
}

func checkInputExtensions(exts []string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "input_extensions",
		Name: "Input file types",
	}
	if len(exts) == 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "No input file extensions configured."
		item.Hint = "Add at least one extension, e.g. .csv."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = strings.Join(exts, ", ")
	return item
}

// scriptArg returns the first argument when it looks like a script path.
func scriptArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	first := strings.TrimSpace(args[0])
	switch strings.ToLower(filepath.Ext(first)) {
	case ".py", ".r", ".m", ".jl", ".sh":
		return first
	default:
		return ""
	}
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
) *Checker {
	return &Checker{
		lookPath: lookPath,
		stat:     stat,
	}
}
