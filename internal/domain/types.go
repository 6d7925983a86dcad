package domain

import "time"

// JobStatus tracks the lifecycle of a single analysis job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	AnalyzerCommand string   `json:"analyzerCommand"`
	AnalyzerArgs    []string `json:"analyzerArgs"`
	InputExtensions []string `json:"inputExtensions"`
	LogLevel        string   `json:"logLevel"`
	LogEncoding     string   `json:"logEncoding"`
}

// AnalysisJob is one run of the external analyzer over a folder.
type AnalysisJob struct {
	ID         string    `json:"id"`
	FolderPath string    `json:"folderPath"`
	Status     JobStatus `json:"status"`
	Message    string    `json:"message"`
	ExitCode   int       `json:"exitCode"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}
