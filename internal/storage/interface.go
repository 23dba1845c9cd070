package storage

import (
	"context"
	"time"

	"github.com/recordkit/recstamp/internal/record"
)

// RunInfo represents one recorded stamping run
type RunInfo struct {
	// ID is the unique identifier of the run
	ID string `json:"id"`
	// Source labels where the records came from (file path, "stdin", "sample")
	Source string `json:"source"`
	// Records is the number of records stamped during the run
	Records int `json:"records"`
	// Output is the format the stamped records were written in
	Output record.Format `json:"output"`
	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the run completed
	FinishedAt time.Time `json:"finished_at"`
}

// RunStorage defines the interface for persistent storage of run history
type RunStorage interface {
	// Open initializes the storage and makes it ready for use
	Open() error

	// Close closes the storage and releases any resources
	Close() error

	// CreateRun stores a new run in the history
	CreateRun(ctx context.Context, run *RunInfo) error

	// GetRun retrieves a run by its ID
	GetRun(ctx context.Context, runID string) (*RunInfo, error)

	// ListRuns retrieves runs ordered newest first; limit <= 0 means no limit
	ListRuns(ctx context.Context, limit int) ([]*RunInfo, error)

	// DeleteRun removes a run from the history
	DeleteRun(ctx context.Context, runID string) error

	// ClearRuns removes all runs from the history
	ClearRuns(ctx context.Context) error

	// TotalRecords returns the sum of record counts across all stored runs
	TotalRecords(ctx context.Context) (int, error)
}

// ErrRunNotFound is returned when a run with the specified ID is not found
type ErrRunNotFound struct {
	RunID string
}

// Error implements the error interface
func (e ErrRunNotFound) Error() string {
	return "run not found: " + e.RunID
}

// IsNotFound returns true if the error is ErrRunNotFound
func IsNotFound(err error) bool {
	_, ok := err.(ErrRunNotFound)
	return ok
}
