package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"sense-hacker-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// The battle state machine is single-owner, so sessions stay in-process;
// Redis marks session liveness so an operator can see who is playing and
// cross-instance routing can be layered on later.
type SessionStore struct {
	client   *redis.Client
	rules    app.Rules
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, rules app.Rules, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		rules:    rules,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(playerID), "1", s.ttl).Err()
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
	if _, ok := s.sessions[playerID]; !ok {
		return
	}
	delete(s.sessions, playerID)
	_ = s.client.Del(context.Background(), s.key(playerID)).Err()
}

func (s *SessionStore) key(playerID string) string {
	return "battle:session:" + playerID
}
