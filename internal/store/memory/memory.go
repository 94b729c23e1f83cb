// Package memory is an in-process record and account store. It is the
// default backend for local first runs and the fake used by the service
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"finanzia/internal/core"
	"finanzia/internal/store"
)

type Store struct {
	mu        sync.Mutex
	nextID    int64
	movements []core.Movement
	accounts  map[string]core.Account
}

// Ensure interface conformance
var (
	_ store.MovementAppender = (*Store)(nil)
	_ store.MovementLister   = (*Store)(nil)
	_ store.MovementDeleter  = (*Store)(nil)
	_ store.AccountCreator   = (*Store)(nil)
	_ store.AccountFinder    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		nextID:   1,
		accounts: make(map[string]core.Account),
	}
}

// Append stores the movement and returns its assigned id.
func (s *Store) Append(_ context.Context, m core.Movement) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	s.movements = append(s.movements, m)
	return m.ID, nil
}

// List returns the owner's movements, newest first.
func (s *Store) List(_ context.Context, owner string, f store.MonthFilter) ([]core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Movement
	for _, m := range s.movements {
		if m.Owner != owner || !f.Contains(m.Date) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Delete removes the owner's movement with the given id.
func (s *Store) Delete(_ context.Context, owner string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.movements {
		if m.ID == id && m.Owner == owner {
			s.movements = append(s.movements[:i], s.movements[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// CreateAccount registers a new account, failing on username collision.
func (s *Store) CreateAccount(_ context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Username]; ok {
		return core.ErrAlreadyExists
	}
	s.accounts[a.Username] = a
	return nil
}

// FindAccount returns the account registered under username.
func (s *Store) FindAccount(_ context.Context, username string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}
