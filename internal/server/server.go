// Package server exposes surface sessions over HTTP for browser-based
// visualization hosts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/objective"
	"github.com/cwbudde/surfacedescent/internal/store"
	"github.com/cwbudde/surfacedescent/internal/surface"
)

// Server represents the HTTP server
type Server struct {
	sessions *SessionManager
	runStore store.Store
	addr     string
	server   *http.Server
}

// NewServer creates a new HTTP server. runStore may be nil, in which case
// minimize results are not archived.
func NewServer(addr string, runStore store.Store) *Server {
	s := &Server{
		sessions: NewSessionManager(),
		runStore: runStore,
		addr:     addr,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped with middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/functions", s.handleFunctions)
	mux.HandleFunc("/api/v1/surfaces", s.handleSurfaces)
	mux.HandleFunc("/api/v1/surfaces/", s.handleSurfacesWithID)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// createSurfaceRequest is the body of POST /api/v1/surfaces
type createSurfaceRequest struct {
	Function string `json:"function"`
	surface.Domain
	Descent *descent.Config `json:"descent,omitempty"`
}

// surfaceResponse describes a session together with its sampled grid
type surfaceResponse struct {
	ID        string             `json:"id"`
	Function  objective.Selector `json:"function"`
	Domain    surface.Domain     `json:"domain"`
	Descent   descent.Config     `json:"descent"`
	CreatedAt time.Time          `json:"createdAt"`
	Runs      int                `json:"runs"`
	X         []float64          `json:"x"`
	Y         []float64          `json:"y"`
	Z         []float64          `json:"z"`
	ZMin      float64            `json:"zMin"`
	ZMax      float64            `json:"zMax"`
}

// minimizeRequest is the body of POST /api/v1/surfaces/:id/minimize
type minimizeRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// minimizeResponse carries the flattened (x, y, f) trajectory
type minimizeResponse struct {
	SessionID  string         `json:"sessionId"`
	RunID      string         `json:"runId,omitempty"`
	Trajectory []float64      `json:"trajectory"`
	Steps      int            `json:"steps"`
	Iterations int            `json:"iterations"`
	Reason     descent.Reason `json:"reason"`
	Final      descent.Step   `json:"final"`
}

// handleFunctions handles GET /api/v1/functions
func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, objective.Selectors())
}

// handleSurfaces handles /api/v1/surfaces
func (s *Server) handleSurfaces(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSurface(w, r)
	case http.MethodGet:
		s.handleListSurfaces(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSurfacesWithID handles /api/v1/surfaces/:id/*
func (s *Server) handleSurfacesWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/surfaces/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	sessionID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.handleGetSurface(w, r, sessionID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.handleDeleteSurface(w, r, sessionID)
	case len(parts) == 1:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case parts[1] == "minimize" && r.Method == http.MethodPost:
		s.handleMinimize(w, r, sessionID)
	case parts[1] == "stream" && r.Method == http.MethodGet:
		s.handleDescentStream(w, r, sessionID)
	case parts[1] == "minimize" || parts[1] == "stream":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateSurface handles POST /api/v1/surfaces
func (s *Server) handleCreateSurface(w http.ResponseWriter, r *http.Request) {
	// Fields missing from "descent" keep their defaults; an explicit
	// "maxIter": 0 still means zero iterations.
	defaults := descent.DefaultConfig()
	req := createSurfaceRequest{Descent: &defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	sel, err := objective.ParseSelector(req.Function)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := s.sessions.CreateSession(SessionConfig{
		Function: sel,
		Domain:   req.Domain,
		Descent:  req.Descent,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Surface session created",
		"session_id", session.ID,
		"function", sel.String(),
		"points", req.Domain.Size(),
	)

	writeJSON(w, http.StatusCreated, newSurfaceResponse(session))
}

// handleListSurfaces handles GET /api/v1/surfaces
func (s *Server) handleListSurfaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.ListSessions())
}

// handleGetSurface handles GET /api/v1/surfaces/:id
func (s *Server) handleGetSurface(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, exists := s.sessions.Snapshot(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newSurfaceResponse(&session))
}

// handleDeleteSurface handles DELETE /api/v1/surfaces/:id
func (s *Server) handleDeleteSurface(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !s.sessions.DeleteSession(sessionID) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	slog.Info("Surface session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handleMinimize handles POST /api/v1/surfaces/:id/minimize
func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, exists := s.sessions.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req minimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil {
		http.Error(w, "x and y are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	traj, err := session.Surface.Descend(*req.X, *req.Y)
	if err != nil {
		writeError(w, err)
		return
	}

	runID := s.recordRun(session, *req.X, *req.Y, traj)

	slog.Info("Descent completed",
		"session_id", sessionID,
		"steps", traj.Len(),
		"reason", traj.Reason.String(),
		"final_value", traj.Final().F,
		"elapsed", time.Since(start),
	)

	writeJSON(w, http.StatusOK, minimizeResponse{
		SessionID:  sessionID,
		RunID:      runID,
		Trajectory: traj.Flatten2D(),
		Steps:      traj.Len(),
		Iterations: traj.Iterations,
		Reason:     traj.Reason,
		Final:      traj.Final(),
	})
}

func newSurfaceResponse(session *Session) surfaceResponse {
	surf := session.Surface
	zMin, zMax := surf.Range()
	return surfaceResponse{
		ID:        session.ID,
		Function:  session.Config.Function,
		Domain:    surf.Domain(),
		Descent:   surf.DescentConfig(),
		CreatedAt: session.CreatedAt,
		Runs:      session.Runs,
		X:         surf.X(),
		Y:         surf.Y(),
		Z:         surf.Z(),
		ZMin:      zMin,
		ZMax:      zMax,
	}
}

// writeJSON encodes v with the given status code. Encoding happens before
// the header is written so a failure still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

// writeError maps engine precondition failures to 400 and everything else to 500
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, surface.ErrInvalidDomain),
		errors.Is(err, objective.ErrUnknownSelector),
		errors.Is(err, objective.ErrDimensionMismatch),
		errors.Is(err, descent.ErrInvalidConfig),
		errors.Is(err, store.ErrInvalidRunID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		slog.Error("Request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
