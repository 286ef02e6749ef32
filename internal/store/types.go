package store

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/objective"
	"github.com/cwbudde/surfacedescent/internal/surface"
)

// RunConfig captures everything needed to reproduce a descent run.
type RunConfig struct {
	Function objective.Selector `json:"function"`
	Domain   surface.Domain     `json:"domain"`
	Descent  descent.Config     `json:"descent"`
	StartX   float64            `json:"startX"`
	StartY   float64            `json:"startY"`
}

// Run is the archived summary of one descent. The per-step trajectory lives
// next to it in trace.jsonl (see TraceWriter).
type Run struct {
	// ID is the unique identifier for this run
	ID string `json:"id"`

	// SessionID links the run to the host session that produced it, if any
	SessionID string `json:"sessionId,omitempty"`

	Config RunConfig `json:"config"`

	// InitialValue is f at the start point
	InitialValue float64 `json:"initialValue"`

	// FinalPoint and FinalValue describe the last accepted point
	FinalPoint []float64 `json:"finalPoint"`
	FinalValue float64   `json:"finalValue"`

	// Steps is the number of recorded points, including the start
	Steps int `json:"steps"`

	// Iterations is the number of outer descent iterations performed
	Iterations int `json:"iterations"`

	Reason descent.Reason `json:"reason"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo contains metadata about a run without the point data.
type RunInfo struct {
	ID         string             `json:"id"`
	Function   objective.Selector `json:"function"`
	FinalValue float64            `json:"finalValue"`
	Steps      int                `json:"steps"`
	Reason     descent.Reason     `json:"reason"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NewRun summarizes a finished trajectory.
func NewRun(runID string, config RunConfig, traj *descent.Trajectory) *Run {
	first := traj.Steps[0]
	final := traj.Final()
	return &Run{
		ID:           runID,
		Config:       config,
		InitialValue: first.F,
		FinalPoint:   append([]float64(nil), final.X...),
		FinalValue:   final.F,
		Steps:        traj.Len(),
		Iterations:   traj.Iterations,
		Reason:       traj.Reason,
		Timestamp:    time.Now(),
	}
}

// ToInfo converts a full Run to RunInfo (metadata only).
func (r *Run) ToInfo() RunInfo {
	return RunInfo{
		ID:         r.ID,
		Function:   r.Config.Function,
		FinalValue: r.FinalValue,
		Steps:      r.Steps,
		Reason:     r.Reason,
		Timestamp:  r.Timestamp,
	}
}

// Validate checks if the run has valid data.
// Returns an error if any required field is missing or invalid.
func (r *Run) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if len(r.FinalPoint) != 2 {
		return &ValidationError{Field: "FinalPoint", Reason: fmt.Sprintf("must have 2 coordinates, got %d", len(r.FinalPoint))}
	}
	if r.Steps < 1 {
		return &ValidationError{Field: "Steps", Reason: "must include the start point"}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Steps > r.Config.Descent.MaxIter+1 {
		return &ValidationError{
			Field:  "Steps",
			Reason: fmt.Sprintf("%d exceeds the iteration budget %d", r.Steps, r.Config.Descent.MaxIter),
		}
	}
	if r.FinalValue > r.InitialValue || math.IsNaN(r.FinalValue) {
		return &ValidationError{Field: "FinalValue", Reason: "cannot exceed the initial value"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if err := r.Config.Domain.Validate(); err != nil {
		return &ValidationError{Field: "Config.Domain", Reason: err.Error()}
	}
	if err := r.Config.Descent.Validate(); err != nil {
		return &ValidationError{Field: "Config.Descent", Reason: err.Error()}
	}
	return nil
}

// ValidationError represents a run validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
