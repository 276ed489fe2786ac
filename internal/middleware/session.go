package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is used when a store is created with a zero TTL.
const DefaultSessionTTL = 7 * 24 * time.Hour // one week

// Session represents an authenticated user session
type Session struct {
	UserID    string
	ExpiresAt time.Time
}

// SessionStore maps opaque session tokens to user ids.
// Implementations: memory, SQLite and Redis.
type SessionStore interface {
	// Create starts a session for userID and returns its token.
	Create(ctx context.Context, userID string) (string, error)
	// Resolve returns the user id of a live session. ok is false for
	// unknown or expired tokens.
	Resolve(ctx context.Context, token string) (userID string, ok bool, err error)
	// Destroy ends the session. Unknown tokens are not an error.
	Destroy(ctx context.Context, token string) error
}

// MemorySessionStore is an in-memory implementation of SessionStore.
// Sessions are lost on server restart.
type MemorySessionStore struct {
	mu  sync.RWMutex
	m   map[string]Session
	ttl time.Duration
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		m:   make(map[string]Session),
		ttl: ttl,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, userID string) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	s.m[id] = Session{
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Unlock()

	return id, nil
}

func (s *MemorySessionStore) Resolve(_ context.Context, token string) (string, bool, error) {
	s.mu.RLock()
	sess, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	if time.Now().After(sess.ExpiresAt) {
		// Expired: clean up and treat as missing
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()
		return "", false, nil
	}

	return sess.UserID, true, nil
}

func (s *MemorySessionStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()
	return nil
}
