package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"vibration-viewer/internal/domain"
)

// ErrInvalidTransition is returned for edges outside the job state machine.
var ErrInvalidTransition = errors.New("invalid transition")

// Job guards the state machine of one analysis run.
type Job struct {
	mu  sync.RWMutex
	job domain.AnalysisJob
}

// newJob creates a job in idle state.
func newJob(id, folderPath string) *Job {
	return &Job{
		job: domain.AnalysisJob{
			ID:         id,
			FolderPath: folderPath,
			Status:     domain.JobStatusIdle,
		},
	}
}

// Transition validates and applies a state change with its status message.
func (j *Job) Transition(status domain.JobStatus, message string, exitCode int, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !isValidTransition(j.job.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.job.Status, status)
	}

	j.job.Status = status
	j.job.Message = message
	j.job.ExitCode = exitCode
	switch {
	case status == domain.JobStatusRunning:
		j.job.StartedAt = at
	case status.IsTerminal():
		j.job.FinishedAt = at
	}
	return nil
}

// Snapshot returns a copy of the current job state.
func (j *Job) Snapshot() domain.AnalysisJob {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.job
}

// isValidTransition enforces idle -> running -> {completed | failed}.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusIdle:
		return to == domain.JobStatusRunning
	case domain.JobStatusRunning:
		return to == domain.JobStatusCompleted || to == domain.JobStatusFailed
	default:
		return false
	}
}
