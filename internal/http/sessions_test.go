package http

import (
	"testing"
	"time"

	"finanzia/internal/core"
)

func TestSessionLifecycle(t *testing.T) {
	s := newSessionStore(time.Minute)

	token := s.Create(core.Session{Username: "ana"})
	if token == "" {
		t.Fatal("Create returned empty token")
	}

	sess, ok := s.Get(token)
	if !ok || sess.Username != "ana" {
		t.Fatalf("Get = %+v, %v", sess, ok)
	}

	s.Delete(token)
	if _, ok := s.Get(token); ok {
		t.Fatal("deleted token still resolves")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	s := newSessionStore(time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := s.Create(core.Session{Username: "ana"})
		if seen[token] {
			t.Fatalf("duplicate token after %d creations", i)
		}
		seen[token] = true
	}
}

func TestSessionExpiry(t *testing.T) {
	s := newSessionStore(10 * time.Millisecond)
	token := s.Create(core.Session{Username: "ana"})
	time.Sleep(20 * time.Millisecond)

	if _, ok := s.Get(token); ok {
		t.Fatal("expired token still resolves")
	}
}

func TestSessionCleanExpired(t *testing.T) {
	s := newSessionStore(10 * time.Millisecond)
	s.Create(core.Session{Username: "ana"})
	s.Create(core.Session{Username: "bob"})
	time.Sleep(20 * time.Millisecond)

	if n := s.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired removed %d sessions, want 2", n)
	}
}
