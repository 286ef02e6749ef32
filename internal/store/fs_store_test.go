package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/objective"
	"github.com/cwbudde/surfacedescent/internal/surface"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

func testRunConfig() RunConfig {
	return RunConfig{
		Function: objective.SelectRastrigin,
		Domain:   surface.Domain{XMin: -5, XMax: 5, XSteps: 50, YMin: -5, YMax: 5, YSteps: 50},
		Descent:  descent.DefaultConfig(),
		StartX:   2.3,
		StartY:   -1.7,
	}
}

// createTestRun creates a run record with test data.
func createTestRun(runID string) *Run {
	return &Run{
		ID:           runID,
		Config:       testRunConfig(),
		InitialValue: 31.5,
		FinalPoint:   []float64{1.99, -0.995},
		FinalValue:   4.97,
		Steps:        12,
		Iterations:   12,
		Reason:       descent.ReasonConverged,
		Timestamp:    time.Now(),
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if store.BaseDir() != tempDir {
		t.Errorf("Expected base dir %s, got %s", tempDir, store.BaseDir())
	}

	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "test-run-123"
	if err := store.SaveRun(runID, createTestRun(runID)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", runID, "run.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Run file was not created at %s", expectedPath)
	}

	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save")
	}
}

func TestSaveRun_InvalidArguments(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveRun("", createTestRun("any-id")); err == nil {
		t.Error("Expected error for empty runID")
	}
	if err := store.SaveRun("test-run", nil); err == nil {
		t.Error("Expected error for nil run")
	}
}

func TestSaveRun_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-overwrite"
	first := createTestRun(runID)
	first.FinalValue = 5
	second := createTestRun(runID)
	second.FinalValue = 1

	if err := store.SaveRun(runID, first); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := store.SaveRun(runID, second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadRun(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.FinalValue != 1 {
		t.Errorf("Expected FinalValue=1, got %f", loaded.FinalValue)
	}
}

func TestLoadRun(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-load"
	original := createTestRun(runID)
	if err := store.SaveRun(runID, original); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.ID != original.ID {
		t.Errorf("ID mismatch: expected %s, got %s", original.ID, loaded.ID)
	}
	if loaded.Config.Function != objective.SelectRastrigin {
		t.Errorf("Function mismatch: got %s", loaded.Config.Function)
	}
	if loaded.Config.Domain != original.Config.Domain {
		t.Errorf("Domain mismatch: expected %+v, got %+v", original.Config.Domain, loaded.Config.Domain)
	}
	if loaded.Config.Descent != original.Config.Descent {
		t.Errorf("Descent config mismatch: expected %+v, got %+v", original.Config.Descent, loaded.Config.Descent)
	}
	if loaded.Reason != descent.ReasonConverged {
		t.Errorf("Reason mismatch: got %s", loaded.Reason)
	}
	if len(loaded.FinalPoint) != 2 || loaded.FinalPoint[0] != 1.99 {
		t.Errorf("FinalPoint mismatch: got %v", loaded.FinalPoint)
	}
	if !loaded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp mismatch: expected %v, got %v", original.Timestamp, loaded.Timestamp)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Loaded run should validate: %v", err)
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun("nonexistent-run")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestLoadRun_Corrupted(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "corrupted-run"
	if err := os.MkdirAll(store.RunDir(runID), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.RunDir(runID), "run.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := store.LoadRun(runID)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deserialization error, got %v", err)
	}
}

func TestListRuns_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected empty list, got %d runs", len(infos))
	}
}

func TestListRuns_SortedAndSkipsInvalid(t *testing.T) {
	store, tempDir := setupTestStore(t)

	now := time.Now()
	for i, runID := range []string{"run-c", "run-a", "run-b"} {
		run := createTestRun(runID)
		run.Timestamp = now.Add(time.Duration(-i) * time.Hour)
		if err := store.SaveRun(runID, run); err != nil {
			t.Fatalf("Failed to save run %s: %v", runID, err)
		}
	}

	if err := os.MkdirAll(filepath.Join(tempDir, "runs", "no-record"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "runs", "dummy.txt"), []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}

	want := []string{"run-b", "run-a", "run-c"}
	for i, info := range infos {
		if info.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], info.ID)
		}
	}
}

func TestDeleteRun(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-delete"
	if err := store.SaveRun(runID, createTestRun(runID)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	if err := store.DeleteRun(runID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	if _, err := store.LoadRun(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError after delete, got %v", err)
	}
	if err := store.DeleteRun(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}
	if err := store.DeleteRun(""); err == nil {
		t.Error("Expected error for empty runID")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	const numRuns = 10
	done := make(chan bool, numRuns)

	for i := 0; i < numRuns; i++ {
		go func(idx int) {
			runID := fmt.Sprintf("concurrent-run-%d", idx)
			if err := store.SaveRun(runID, createTestRun(runID)); err != nil {
				t.Errorf("Concurrent save failed for run %s: %v", runID, err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < numRuns; i++ {
		<-done
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != numRuns {
		t.Errorf("Expected %d runs, got %d", numRuns, len(infos))
	}
}

func TestArchiveAndLoadTrajectory(t *testing.T) {
	store, _ := setupTestStore(t)

	cfg := testRunConfig()
	s, err := surface.Build(-5, 5, 10, -5, 5, 10, cfg.Function)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	traj, err := s.Descend(cfg.StartX, cfg.StartY)
	if err != nil {
		t.Fatalf("Descend failed: %v", err)
	}

	run := NewRun("archived-run", cfg, traj)
	if err := Archive(store, run, traj); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	loaded, err := LoadTrajectory(store, "archived-run")
	if err != nil {
		t.Fatalf("LoadTrajectory failed: %v", err)
	}
	if loaded.Len() != traj.Len() {
		t.Fatalf("Expected %d steps, got %d", traj.Len(), loaded.Len())
	}
	if loaded.Reason != traj.Reason {
		t.Errorf("Reason mismatch: expected %s, got %s", traj.Reason, loaded.Reason)
	}

	want, got := traj.Flatten2D(), loaded.Flatten2D()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("Flattened value %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if err := store.DeleteRun("archived-run"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := NewTraceReader(store.BaseDir(), "archived-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Trace should be removed with the run, got %v", err)
	}
}

func TestArchive_RejectsInvalidRun(t *testing.T) {
	store, _ := setupTestStore(t)

	run := createTestRun("")
	traj := &descent.Trajectory{Steps: []descent.Step{{X: []float64{0, 0}}}}
	if err := Archive(store, run, traj); err == nil {
		t.Fatal("Expected validation error")
	}

	infos, _ := store.ListRuns()
	if len(infos) != 0 {
		t.Errorf("Nothing should be archived, got %d runs", len(infos))
	}
}

func TestFSStore_RejectsUnsafeRunIDs(t *testing.T) {
	store, tempDir := setupTestStore(t)

	keep := filepath.Join(tempDir, "keep.txt")
	if err := os.WriteFile(keep, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	for _, runID := range []string{"", ".", "..", "../runs", "a/b", `a\b`} {
		if err := store.DeleteRun(runID); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("DeleteRun(%q): expected ErrInvalidRunID, got %v", runID, err)
		}
		if _, err := store.LoadRun(runID); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("LoadRun(%q): expected ErrInvalidRunID, got %v", runID, err)
		}
		if err := store.SaveRun(runID, createTestRun("x")); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("SaveRun(%q): expected ErrInvalidRunID, got %v", runID, err)
		}
		if _, err := NewTraceWriter(tempDir, runID, false); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("NewTraceWriter(%q): expected ErrInvalidRunID, got %v", runID, err)
		}
		if _, err := NewTraceReader(tempDir, runID); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("NewTraceReader(%q): expected ErrInvalidRunID, got %v", runID, err)
		}
	}

	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Files outside the run directory must survive, got %v", err)
	}
}
