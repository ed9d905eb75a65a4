package server

import (
	"sync"
	"time"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/playback"
)

// SessionManager tracks playback sessions created over the API. Sessions
// expire ttl after creation unless deleted first.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
}

type entry struct {
	session *playback.Session
	expiry  *time.Timer
}

// NewSessionManager creates a new session manager
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

// Create starts a session for c and registers it.
func (m *SessionManager) Create(c compose.Composition) *playback.Session {
	sess := playback.NewSession(c)
	e := &entry{session: sess}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ttl > 0 {
		e.expiry = time.AfterFunc(m.ttl, func() {
			m.remove(sess.ID)
		})
	}
	m.sessions[sess.ID] = e
	return sess
}

// Get retrieves a session by ID
func (m *SessionManager) Get(id string) (*playback.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, cgerrors.ErrSessionNotFound
	}
	return e.session, nil
}

// Delete stops and forgets a session.
func (m *SessionManager) Delete(id string) error {
	if !m.remove(id) {
		return cgerrors.ErrSessionNotFound
	}
	return nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.sessions {
		if e.expiry != nil {
			e.expiry.Stop()
		}
		e.session.Stop()
		delete(m.sessions, id)
	}
}

func (m *SessionManager) remove(id string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	if e.expiry != nil {
		e.expiry.Stop()
	}
	e.session.Stop()
	return true
}
