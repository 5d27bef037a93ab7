package models

import "time"

// RunStatus is the lifecycle state of a recorded scan.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is a recorded scan in the history store.
type Run struct {
	ID          string     `json:"id" db:"id"`
	Query       string     `json:"query" db:"query"`
	Policy      string     `json:"policy" db:"policy"`
	Directories []string   `json:"directories" db:"directories"`
	Fragments   []string   `json:"fragments" db:"fragments"`
	Status      RunStatus  `json:"status" db:"status"`
	Error       string     `json:"error,omitempty" db:"error"`
	Summary     Summary    `json:"summary"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// ScanResponse is the API response for a completed scan.
type ScanResponse struct {
	RunID   string  `json:"run_id,omitempty"`
	Query   string  `json:"query"`
	Policy  string  `json:"policy"`
	Matches []Match `json:"matches"`
	Summary Summary `json:"summary"`
}
