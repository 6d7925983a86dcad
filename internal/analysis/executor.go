package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"vibration-viewer/internal/domain"
)

// maxDiagnosticLen bounds process text attached to failure notifications.
const maxDiagnosticLen = 2000

// Result describes a successful analyzer invocation.
type Result struct {
	ResultsPath string
	Log         CommandLog
}

// CommandLog captures one external command invocation result.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// ProcessErrorKind separates launch failures from non-zero exits.
type ProcessErrorKind string

const (
	ProcessErrorLaunch ProcessErrorKind = "launch"
	ProcessErrorExit   ProcessErrorKind = "exit"
)

// ProcessError reports an analyzer that could not start or exited non-zero.
type ProcessError struct {
	Kind       ProcessErrorKind `json:"kind"`
	Message    string           `json:"message"`
	CommandLog CommandLog       `json:"commandLog"`
	Err        error            `json:"-"`
}

// Error formats process failures for logs and UI.
func (e *ProcessError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == ProcessErrorLaunch {
		return fmt.Sprintf("%s: %s (cmd=%s)", e.Kind, e.Message, e.CommandLog.Command)
	}
	return fmt.Sprintf(
		"%s: %s (cmd=%s exit=%d)",
		e.Kind,
		e.Message,
		e.CommandLog.Command,
		e.CommandLog.ExitCode,
	)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *ProcessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Diagnostic returns human-readable process output explaining the failure.
func (e *ProcessError) Diagnostic() string {
	if e == nil {
		return ""
	}
	for _, text := range []string{e.CommandLog.Stderr, e.CommandLog.Stdout} {
		if text = strings.TrimSpace(text); text != "" {
			return tail(text, maxDiagnosticLen)
		}
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Started  bool
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
		Started:  cmd.Process != nil,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Executor runs the external analyzer over a folder of recordings.
type Executor struct {
	command string
	args    []string
	runner  commandRunner
}

// NewExecutor constructs the production executor from settings.
func NewExecutor(settings domain.Settings) *Executor {
	return &Executor{
		command: settings.AnalyzerCommand,
		args:    append([]string(nil), settings.AnalyzerArgs...),
		runner:  &execRunner{},
	}
}

// Run invokes the analyzer once and waits for it to exit.
func (e *Executor) Run(ctx context.Context, folderPath string) (Result, error) {
	args := buildAnalyzerArgs(e.args, folderPath)

	cmdResult, runErr := e.runner.Run(ctx, e.command, args...)
	log := CommandLog{
		Command:  e.command,
		Args:     args,
		ExitCode: cmdResult.ExitCode,
		Stdout:   cmdResult.Stdout,
		Stderr:   cmdResult.Stderr,
	}
	if runErr != nil {
		if !cmdResult.Started {
			return Result{}, &ProcessError{
				Kind:       ProcessErrorLaunch,
				Message:    "analyzer could not be started",
				CommandLog: log,
				Err:        runErr,
			}
		}
		return Result{}, &ProcessError{
			Kind:       ProcessErrorExit,
			Message:    "analyzer exited with an error",
			CommandLog: log,
			Err:        runErr,
		}
	}

	return Result{
		ResultsPath: ResultsPath(folderPath),
		Log:         log,
	}, nil
}

// buildAnalyzerArgs appends the input folder flag to the configured args.
func buildAnalyzerArgs(base []string, folderPath string) []string {
	args := make([]string, 0, len(base)+2)
	args = append(args, base...)
	return append(args, "-i", folderPath)
}

// tail keeps the last n bytes of text, where the error usually is.
func tail(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return "..." + text[len(text)-n:]
}

// NewExecutorForTests constructs an executor with an injectable runner.
func NewExecutorForTests(command string, args []string, runner commandRunner) *Executor {
	return &Executor{
		command: command,
		args:    args,
		runner:  runner,
	}
}
