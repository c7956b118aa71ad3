package session

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/syntheses-api/internal/models"
)

// MemoryStore keeps sessions in process. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
	now      func() time.Time
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]time.Time), now: time.Now}
}

// Create issues a new session valid for ttl.
func (s *MemoryStore) Create(ctx context.Context, ttl time.Duration) (models.Session, error) {
	token, err := NewToken()
	if err != nil {
		return models.Session{}, err
	}
	sess := models.Session{Token: token, ExpiresAt: s.now().Add(ttl)}

	s.mu.Lock()
	s.sessions[token] = sess.ExpiresAt
	s.mu.Unlock()
	return sess, nil
}

// Validate returns the live session for token.
func (s *MemoryStore) Validate(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrInvalidSession
	}
	s.mu.RLock()
	expiresAt, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return models.Session{}, ErrInvalidSession
	}
	sess := models.Session{Token: token, ExpiresAt: expiresAt}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return models.Session{}, ErrInvalidSession
	}
	return sess, nil
}

// Revoke forgets token. Unknown tokens are ignored.
func (s *MemoryStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// SweepExpired drops expired sessions and returns how many were removed.
func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, expiresAt := range s.sessions {
		if !now.Before(expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored sessions, expired ones included until swept.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
