package memory

import (
	"sync"

	"sense-hacker-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository,
// keyed by player id.
type SessionStore struct {
	rules    app.Rules
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(rules app.Rules) *SessionStore {
	return &SessionStore{
		rules:    rules,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(playerID, displayName, avatarRef string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[playerID]; ok {
		return session
	}
	session := app.NewSession(playerID, displayName, avatarRef, s.rules)
	s.sessions[playerID] = session
	return session
}

func (s *SessionStore) Get(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	return session, ok
}

func (s *SessionStore) Delete(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, playerID)
}
