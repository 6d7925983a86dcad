package jobs

import (
	"errors"
	"sync"

	"vibration-viewer/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second active job.
var ErrJobAlreadyRunning = errors.New("job already running")

// Manager is the UI-side job slot: it admits one submission at a time and
// mirrors the latest job snapshot from runner events.
type Manager struct {
	mu      sync.RWMutex
	busy    bool
	current domain.AnalysisJob
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.AnalysisJob{
			Status: domain.JobStatusIdle,
		},
	}
}

// Acquire reserves the slot for a new submission.
func (m *Manager) Acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy {
		return ErrJobAlreadyRunning
	}
	m.busy = true
	return nil
}

// Track records the snapshot returned by Runner.Submit. A job already
// adopted from its running event is left alone so later events are not undone.
func (m *Manager) Track(job domain.AnalysisJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.ID == job.ID {
		return
	}
	m.current = job
}

// Observe applies a runner event to the tracked job. Finished events free the slot.
func (m *Manager) Observe(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.JobID == "" {
		return
	}
	if event.JobID != m.current.ID {
		// The running event may arrive before Track when the slot is held.
		if !m.busy || event.Type != EventTypeStatus || event.Status != domain.JobStatusRunning {
			return
		}
		m.current = domain.AnalysisJob{
			ID:         event.JobID,
			FolderPath: event.FolderPath,
			StartedAt:  event.Timestamp,
		}
	}

	switch event.Type {
	case EventTypeStatus:
		m.current.Status = event.Status
		m.current.Message = event.Message
		m.current.ExitCode = event.ExitCode
		if event.Status.IsTerminal() {
			m.current.FinishedAt = event.Timestamp
		}
	case EventTypeFinished:
		m.busy = false
	}
}

// Release frees the slot without a finished event, e.g. when submission aborts.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
}

// Current returns a snapshot of the tracked job.
func (m *Manager) Current() domain.AnalysisJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsRunning reports whether the slot is taken.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}
