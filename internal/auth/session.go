package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Sessions is the server-side session store. A session maps an opaque
// token to a user id and nothing else; role and permissions are loaded
// from the database on every request so a revoked role takes effect
// immediately.
type Sessions struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewSessions creates a session store with the given TTL and cleanup interval.
func NewSessions(ttl, cleanup time.Duration) *Sessions {
	return &Sessions{
		store: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Create opens a new session for the user and returns its opaque token.
func (s *Sessions) Create(userID int64) string {
	token := uuid.NewString()
	s.store.Set(token, userID, s.ttl)
	return token
}

// Lookup resolves a session token to a user id.
func (s *Sessions) Lookup(token string) (int64, bool) {
	v, found := s.store.Get(token)
	if !found {
		return 0, false
	}
	return v.(int64), true
}

// Destroy removes a single session.
func (s *Sessions) Destroy(token string) {
	s.store.Delete(token)
}

// DestroyAllFor removes every session belonging to the user. Called
// when an account is deactivated so the user is logged out everywhere.
func (s *Sessions) DestroyAllFor(userID int64) {
	for token, item := range s.store.Items() {
		if id, ok := item.Object.(int64); ok && id == userID {
			s.store.Delete(token)
		}
	}
}
