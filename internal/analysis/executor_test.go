package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeRunner simulates command execution outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{Started: true}, nil
	}
	return f.run(ctx, name, args...)
}

// TestExecutorRunSuccess checks command line and derived results path.
func TestExecutorRunSuccess(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			gotName = name
			gotArgs = append([]string{}, args...)
			return commandResult{Stdout: "done", Started: true}, nil
		},
	}

	exec := NewExecutorForTests("python", []string{"vibration_analysis.py"}, runner)
	result, err := exec.Run(context.Background(), "/data/run1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if gotName != "python" {
		t.Fatalf("command = %q, want python", gotName)
	}
	want := []string{"vibration_analysis.py", "-i", "/data/run1"}
	if strings.Join(gotArgs, " ") != strings.Join(want, " ") {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	if result.ResultsPath != filepath.Join("/data/run1", "results", "F0_Analysis.csv") {
		t.Fatalf("results path = %q", result.ResultsPath)
	}
	if result.Log.Stdout != "done" {
		t.Fatalf("stdout = %q", result.Log.Stdout)
	}
}

// TestExecutorRunExitFailure checks non-zero exit mapping.
func TestExecutorRunExitFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{
				Stderr:   "Traceback: no wav files\n",
				ExitCode: 2,
				Started:  true,
			}, errors.New("exit status 2")
		},
	}

	_, err := NewExecutorForTests("python", nil, runner).Run(context.Background(), "/data/run1")
	var pErr *ProcessError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *ProcessError", err)
	}
	if pErr.Kind != ProcessErrorExit {
		t.Fatalf("kind = %s, want exit", pErr.Kind)
	}
	if pErr.CommandLog.ExitCode != 2 {
		t.Fatalf("exit code = %d, want 2", pErr.CommandLog.ExitCode)
	}
	if pErr.Diagnostic() != "Traceback: no wav files" {
		t.Fatalf("diagnostic = %q", pErr.Diagnostic())
	}
}

// TestExecutorRunLaunchFailure checks that start errors are classified.
func TestExecutorRunLaunchFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{ExitCode: -1}, errors.New(`exec: "nope": executable file not found in $PATH`)
		},
	}

	_, err := NewExecutorForTests("nope", nil, runner).Run(context.Background(), "/data")
	var pErr *ProcessError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *ProcessError", err)
	}
	if pErr.Kind != ProcessErrorLaunch {
		t.Fatalf("kind = %s, want launch", pErr.Kind)
	}
	if !strings.Contains(pErr.Diagnostic(), "executable file not found") {
		t.Fatalf("diagnostic = %q", pErr.Diagnostic())
	}
}

// TestExecRunnerRealProcess runs real processes to check exit code capture.
func TestExecRunnerRealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	runner := &execRunner{}
	res, err := runner.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}
	if !res.Started || res.ExitCode != 3 {
		t.Fatalf("result = %+v, want started with exit 3", res)
	}
	if strings.TrimSpace(res.Stderr) != "broken" {
		t.Fatalf("stderr = %q", res.Stderr)
	}

	res, err = runner.Run(context.Background(), "definitely-not-an-analyzer-binary")
	if err == nil {
		t.Fatal("expected launch error")
	}
	if res.Started || res.ExitCode != -1 {
		t.Fatalf("result = %+v, want not started with exit -1", res)
	}
}

// TestProcessErrorDiagnosticTail checks long output is truncated from the front.
func TestProcessErrorDiagnosticTail(t *testing.T) {
	long := strings.Repeat("x", maxDiagnosticLen) + "END"
	pErr := &ProcessError{CommandLog: CommandLog{Stdout: long}}
	got := pErr.Diagnostic()
	if !strings.HasSuffix(got, "END") || !strings.HasPrefix(got, "...") {
		t.Fatalf("diagnostic not tailed: %q", got[:10])
	}
}
