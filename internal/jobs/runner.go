package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vibration-viewer/internal/analysis"
	"vibration-viewer/internal/domain"
	"vibration-viewer/internal/logging"
)

// Status messages delivered with job notifications.
const (
	MessageRunning   = "Status: Running analysis..."
	MessageCompleted = "Status: Analysis completed successfully."
	MessageFailed    = "Status: Error occurred: "
	MessageFinished  = "Job finished"
)

// ErrNoExecutor fails a job submitted without an analyzer.
var ErrNoExecutor = errors.New("no analyzer configured")

// Executor runs the external analysis step for one folder.
type Executor interface {
	Run(ctx context.Context, folderPath string) (analysis.Result, error)
}

// Notifier receives job events. It is called from the caller's goroutine
// for the running event and from the job goroutine afterwards.
type Notifier func(Event)

// Runner executes analysis jobs on a background goroutine and reports
// running, one terminal status, then finished, in that order.
//
// Runner does not prevent overlapping submissions; callers hold a Manager slot.
type Runner struct {
	executor Executor
	notify   Notifier
	logger   *zap.Logger
	newID    func() string
	now      func() time.Time
}

// NewRunner builds a runner that reports through notify.
func NewRunner(executor Executor, notify Notifier, logger *zap.Logger) *Runner {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Runner{
		executor: executor,
		notify:   notify,
		logger:   logging.OrNop(logger),
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit starts a fresh job for folderPath and returns its running snapshot.
// The folder must already be validated by the caller.
func (r *Runner) Submit(folderPath string) domain.AnalysisJob {
	return r.SubmitWith(r.executor, folderPath)
}

// SubmitWith is Submit with an executor bound to this one job.
func (r *Runner) SubmitWith(executor Executor, folderPath string) domain.AnalysisJob {
	job := newJob(r.newID(), folderPath)
	// A new job is always idle, so this edge cannot fail.
	_ = job.Transition(domain.JobStatusRunning, MessageRunning, 0, r.now())

	snapshot := job.Snapshot()
	r.logger.Info("analysis job started",
		zap.String("job_id", snapshot.ID),
		zap.String("folder", folderPath),
	)
	r.emit(Event{
		JobID:      snapshot.ID,
		Type:       EventTypeStatus,
		Status:     domain.JobStatusRunning,
		Message:    MessageRunning,
		FolderPath: folderPath,
	})

	go r.run(executor, job)
	return snapshot
}

// run hosts the blocking analyzer call and maps its outcome to events.
func (r *Runner) run(executor Executor, job *Job) {
	snapshot := job.Snapshot()
	defer func() {
		final := job.Snapshot()
		r.emit(Event{
			JobID:      final.ID,
			Type:       EventTypeFinished,
			Status:     final.Status,
			Message:    MessageFinished,
			FolderPath: final.FolderPath,
			ExitCode:   final.ExitCode,
		})
	}()

	result, err := r.execute(executor, snapshot.FolderPath)
	if err != nil {
		r.fail(job, err)
		return
	}
	r.complete(job, result)
}

// execute calls the executor and turns a panic into an error.
func (r *Runner) execute(executor Executor, folderPath string) (result analysis.Result, err error) {
	if executor == nil {
		return analysis.Result{}, ErrNoExecutor
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("analyzer panicked: %v", rec)
		}
	}()
	return executor.Run(context.Background(), folderPath)
}

func (r *Runner) complete(job *Job, result analysis.Result) {
	if err := job.Transition(domain.JobStatusCompleted, MessageCompleted, result.Log.ExitCode, r.now()); err != nil {
		r.logger.Warn("dropping completion", zap.Error(err))
		return
	}

	snapshot := job.Snapshot()
	r.logger.Info("analysis job completed",
		zap.String("job_id", snapshot.ID),
		zap.String("results_path", result.ResultsPath),
	)
	r.emit(Event{
		JobID:       snapshot.ID,
		Type:        EventTypeStatus,
		Status:      domain.JobStatusCompleted,
		Message:     MessageCompleted,
		FolderPath:  snapshot.FolderPath,
		Command:     result.Log.Command,
		Args:        result.Log.Args,
		ResultsPath: result.ResultsPath,
	})
}

func (r *Runner) fail(job *Job, err error) {
	diagnostic, exitCode := describeFailure(err)
	message := MessageFailed + diagnostic
	if tErr := job.Transition(domain.JobStatusFailed, message, exitCode, r.now()); tErr != nil {
		r.logger.Warn("dropping failure", zap.Error(tErr), zap.NamedError("cause", err))
		return
	}

	snapshot := job.Snapshot()
	r.logger.Error("analysis job failed",
		zap.String("job_id", snapshot.ID),
		zap.Int("exit_code", exitCode),
		zap.Error(err),
	)

	event := Event{
		JobID:      snapshot.ID,
		Type:       EventTypeStatus,
		Status:     domain.JobStatusFailed,
		Message:    message,
		FolderPath: snapshot.FolderPath,
		ExitCode:   exitCode,
		Diagnostic: diagnostic,
	}
	var pErr *analysis.ProcessError
	if errors.As(err, &pErr) {
		event.Command = pErr.CommandLog.Command
		event.Args = pErr.CommandLog.Args
	}
	r.emit(event)
}

// describeFailure extracts diagnostic text and exit code from err.
func describeFailure(err error) (string, int) {
	exitCode := -1
	diagnostic := ""

	var pErr *analysis.ProcessError
	if errors.As(err, &pErr) {
		exitCode = pErr.CommandLog.ExitCode
		diagnostic = pErr.Diagnostic()
	} else if err != nil {
		diagnostic = err.Error()
	}

	if strings.TrimSpace(diagnostic) == "" {
		diagnostic = "analysis failed"
	}
	return diagnostic, exitCode
}

func (r *Runner) emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	r.logger.Debug("job event",
		zap.String("job_id", event.JobID),
		zap.String("type", string(event.Type)),
		zap.String("status", string(event.Status)),
	)
	r.notify(event)
}

// NewRunnerForTests builds a runner with deterministic IDs and clock.
func NewRunnerForTests(executor Executor, notify Notifier, newID func() string, now func() time.Time) *Runner {
	r := NewRunner(executor, notify, nil)
	r.newID = newID
	r.now = now
	return r
}
