package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cwbudde/surfacedescent/internal/descent"
	"github.com/cwbudde/surfacedescent/internal/objective"
	"github.com/cwbudde/surfacedescent/internal/surface"
	"github.com/google/uuid"
)

// SessionConfig is the request body that creates a surface session.
type SessionConfig struct {
	Function objective.Selector `json:"function"`
	surface.Domain
	Descent *descent.Config `json:"descent,omitempty"`
}

// Session is one visualization session. It exclusively owns its Surface;
// sessions never share engine state.
type Session struct {
	ID        string           `json:"id"`
	Config    SessionConfig    `json:"config"`
	Surface   *surface.Surface `json:"-"`
	CreatedAt time.Time        `json:"createdAt"`
	Runs      int              `json:"runs"`
	LastRunID string           `json:"lastRunId,omitempty"`
}

// SessionManager tracks live sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty SessionManager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// CreateSession samples a new surface and registers it under a fresh ID.
// Sampling happens outside the lock.
func (sm *SessionManager) CreateSession(config SessionConfig) (*Session, error) {
	var opts []surface.Option
	if config.Descent != nil {
		opts = append(opts, surface.WithDescentConfig(*config.Descent))
	}

	f, err := objective.New(config.Function)
	if err != nil {
		return nil, err
	}
	surf, err := surface.New(config.Domain, f, opts...)
	if err != nil {
		return nil, err
	}

	resolved := surf.DescentConfig()
	config.Descent = &resolved

	session := &Session{
		ID:        uuid.New().String(),
		Config:    config,
		Surface:   surf,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[session.ID] = session
	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(id string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[id]
	return session, exists
}

// Snapshot returns a copy of a session taken under the lock, so counters
// such as Runs are consistent with concurrent minimize calls.
func (sm *SessionManager) Snapshot(id string) (Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[id]
	if !exists {
		return Session{}, false
	}
	return *session, true
}

// ListSessions returns snapshots of all sessions, oldest first
func (sm *SessionManager) ListSessions() []Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sessions := make([]Session, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

// UpdateSession atomically updates a session using the provided function
func (sm *SessionManager) UpdateSession(id string, updateFn func(*Session)) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[id]
	if !exists {
		return fmt.Errorf("session not found: %s", id)
	}

	updateFn(session)
	return nil
}

// DeleteSession drops a session. It reports whether the session existed.
func (sm *SessionManager) DeleteSession(id string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; !exists {
		return false
	}
	delete(sm.sessions, id)
	return true
}
