// Package store archives finished descent runs so hosts can list and replay
// them later.
package store

import (
	"fmt"
	"strings"
)

// Store defines the interface for run persistence operations.
// Implementations must be thread-safe and handle concurrent access gracefully.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a run doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically saves the record for the given run.
	// An existing record with the same runID is overwritten.
	SaveRun(runID string, run *Run) error

	// LoadRun retrieves the record for the given run.
	// Returns ErrNotFound if no record exists for this runID.
	LoadRun(runID string) (*Run, error)

	// ListRuns returns metadata for all archived runs.
	// The returned slice may be empty if nothing has been archived.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run record and its trace.
	// Returns ErrNotFound if no record exists for this runID.
	DeleteRun(runID string) error

	// BaseDir is the root that run traces are written under.
	BaseDir() string
}

// ErrInvalidRunID is returned for run IDs that are empty or would escape
// the run directory.
var ErrInvalidRunID = &InvalidRunIDError{}

// InvalidRunIDError reports a run ID that cannot name a run directory.
type InvalidRunIDError struct {
	RunID string
}

func (e *InvalidRunIDError) Error() string {
	return fmt.Sprintf("invalid run ID: %q", e.RunID)
}

func (e *InvalidRunIDError) Is(target error) bool {
	_, ok := target.(*InvalidRunIDError)
	return ok
}

// ValidateRunID rejects IDs that are empty, dot segments or contain path
// separators, so a run directory always sits directly under <base>/runs.
func ValidateRunID(runID string) error {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return &InvalidRunIDError{RunID: runID}
	}
	return nil
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run or trace.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
