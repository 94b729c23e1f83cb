package http

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"finanzia/internal/core"
)

// sessionStore keeps the opaque token -> session mapping. Tokens expire
// after a fixed TTL; expired entries are dropped lazily on lookup and by
// the periodic cleanup.
type sessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]sessionEntry
}

type sessionEntry struct {
	session   core.Session
	expiresAt time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		items: make(map[string]sessionEntry),
	}
}

// Create issues a fresh opaque token for the session.
func (s *sessionStore) Create(sess core.Session) string {
	token := newToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[token] = sessionEntry{
		session:   sess,
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}

// Get resolves a token to its session, false if unknown or expired.
func (s *sessionStore) Get(token string) (core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[token]
	if !ok {
		return core.Session{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.items, token)
		return core.Session{}, false
	}
	return entry.session, true
}

// Delete forgets a token (logout).
func (s *sessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// CleanExpired removes expired tokens and reports how many went away.
func (s *sessionStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for token, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, token)
			removed++
		}
	}
	return removed
}

func newToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand failing is not survivable for session tokens
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
