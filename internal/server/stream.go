package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwbudde/surfacedescent/internal/descent"
)

// StepEvent is one accepted descent point sent over SSE
type StepEvent struct {
	SessionID string  `json:"sessionId"`
	Iteration int     `json:"iteration"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	F         float64 `json:"f"`
	StepSize  float64 `json:"stepSize,omitempty"`
}

// DoneEvent closes a descent stream
type DoneEvent struct {
	SessionID  string         `json:"sessionId"`
	RunID      string         `json:"runId,omitempty"`
	Steps      int            `json:"steps"`
	Iterations int            `json:"iterations"`
	Reason     descent.Reason `json:"reason"`
}

// handleDescentStream handles GET /api/v1/surfaces/:id/stream?x=&y=
//
// The run is driven step by step while the client is connected; each
// accepted point is flushed as soon as the line search accepts it.
func (s *Server) handleDescentStream(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, exists := s.sessions.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		http.Error(w, "Invalid x parameter", http.StatusBadRequest)
		return
	}
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		http.Error(w, "Invalid y parameter", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	run, err := session.Surface.Start(x, y)
	if err != nil {
		writeError(w, err)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()
	traj := &descent.Trajectory{}
	for run.Next() {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected", "session_id", sessionID, "steps", traj.Len())
			return
		default:
		}

		step := run.Step()
		traj.Steps = append(traj.Steps, step)

		event := StepEvent{
			SessionID: sessionID,
			Iteration: step.Iteration,
			X:         step.X[0],
			Y:         step.X[1],
			F:         step.F,
			StepSize:  step.StepSize,
		}
		if err := writeSSEEvent(w, "", event); err != nil {
			slog.Error("Failed to write SSE event", "error", err)
			return
		}
		flusher.Flush()
	}
	if err := run.Err(); err != nil {
		slog.Error("Descent stream failed", "session_id", sessionID, "error", err)
		return
	}
	traj.Reason = run.Reason()
	traj.Iterations = run.Iterations()

	runID := s.recordRun(session, x, y, traj)

	done := DoneEvent{
		SessionID:  sessionID,
		RunID:      runID,
		Steps:      traj.Len(),
		Iterations: traj.Iterations,
		Reason:     traj.Reason,
	}
	if err := writeSSEEvent(w, "done", done); err != nil {
		slog.Error("Failed to write SSE event", "error", err)
		return
	}
	flusher.Flush()
}

// writeSSEEvent writes an event in SSE format. An empty name sends an
// unnamed (message) event.
func writeSSEEvent(w http.ResponseWriter, name string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
			return err
		}
	}
	// SSE format: "data: {json}\n\n"
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
