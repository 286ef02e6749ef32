package store

import (
	"fmt"

	"github.com/cwbudde/surfacedescent/internal/descent"
)

// Archive saves a run record together with its full trace.
func Archive(s Store, run *Run, traj *descent.Trajectory) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("refusing to archive run: %w", err)
	}

	tw, err := NewTraceWriter(s.BaseDir(), run.ID, false)
	if err != nil {
		return err
	}
	if err := tw.WriteTrajectory(traj); err != nil {
		tw.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}

	return s.SaveRun(run.ID, run)
}

// LoadTrajectory reads a run's trace back into a trajectory.
func LoadTrajectory(s Store, runID string) (*descent.Trajectory, error) {
	run, err := s.LoadRun(runID)
	if err != nil {
		return nil, err
	}

	tr, err := NewTraceReader(s.BaseDir(), runID)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	entries, err := tr.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &descent.Trajectory{
		Steps:      make([]descent.Step, 0, len(entries)),
		Reason:     run.Reason,
		Iterations: run.Iterations,
	}
	for _, e := range entries {
		traj.Steps = append(traj.Steps, e.Step())
	}
	return traj, nil
}
