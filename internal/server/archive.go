package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/store"
	"github.com/google/uuid"
)

// recordRun counts the run against its session and archives it when a store
// is configured. Archive failures are logged, not returned: the trajectory
// has already been computed and the caller still gets it.
func (s *Server) recordRun(session *Session, x, y float64, traj *descent.Trajectory) string {
	runID := ""
	if s.runStore != nil {
		runID = uuid.New().String()
		run := store.NewRun(runID, store.RunConfig{
			Function: session.Config.Function,
			Domain:   session.Surface.Domain(),
			Descent:  session.Surface.DescentConfig(),
			StartX:   x,
			StartY:   y,
		}, traj)
		run.SessionID = session.ID

		if err := store.Archive(s.runStore, run, traj); err != nil {
			slog.Error("Failed to archive run", "session_id", session.ID, "run_id", runID, "error", err)
			runID = ""
		} else {
			slog.Debug("Run archived", "session_id", session.ID, "run_id", runID)
		}
	}

	err := s.sessions.UpdateSession(session.ID, func(sess *Session) {
		sess.Runs++
		if runID != "" {
			sess.LastRunID = runID
		}
	})
	if err != nil {
		slog.Debug("Session deleted before run was recorded", "session_id", session.ID, "run_id", runID, "error", err)
	}
	return runID
}

// runResponse is an archived run with its trajectory
type runResponse struct {
	*store.Run
	Trajectory []float64 `json:"trajectory"`
}

// handleRuns handles GET /api/v1/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.runStore == nil {
		writeJSON(w, http.StatusOK, []store.RunInfo{})
		return
	}

	runs, err := s.runStore.ListRuns()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleRunWithID handles /api/v1/runs/:id
func (s *Server) handleRunWithID(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if runID == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}
	if s.runStore == nil {
		http.Error(w, "Run archive not configured", http.StatusNotFound)
		return
	}
	// Run IDs are minted by recordRun; anything else never names a run.
	if _, err := uuid.Parse(runID); err != nil {
		http.Error(w, "Invalid run ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.runStore.LoadRun(runID)
		if err != nil {
			writeError(w, err)
			return
		}
		traj, err := store.LoadTrajectory(s.runStore, runID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, runResponse{Run: run, Trajectory: traj.Flatten2D()})

	case http.MethodDelete:
		if err := s.runStore.DeleteRun(runID); err != nil {
			writeError(w, err)
			return
		}
		slog.Info("Run deleted", "run_id", runID)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
