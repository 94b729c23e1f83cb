package store

import (
	"context"
	"time"

	"finanzia/internal/core"
)

// MonthFilter optionally restricts a listing to one calendar month. The
// zero value means no restriction; a set filter always carries an explicit
// year so listings never depend on an implicit "current year".
type MonthFilter struct {
	Year  int
	Month int // 1-12
}

// IsZero reports whether the filter is unset.
func (f MonthFilter) IsZero() bool {
	return f.Year == 0 && f.Month == 0
}

// Contains reports whether t falls inside the filtered month. An unset
// filter contains every date.
func (f MonthFilter) Contains(t time.Time) bool {
	if f.IsZero() {
		return true
	}
	return t.Year() == f.Year && int(t.Month()) == f.Month
}

// Ports for the record and account stores. Accounts and movements are two
// separate namespaces even when a backend physically keeps them in one
// sheet; the sentinel encoding never crosses these interfaces.
type (
	MovementAppender interface {
		// Append persists the movement and returns its store-assigned id.
		Append(ctx context.Context, m core.Movement) (int64, error)
	}

	MovementLister interface {
		// List returns the owner's movements, newest first, optionally
		// restricted to one month.
		List(ctx context.Context, owner string, f MonthFilter) ([]core.Movement, error)
	}

	MovementDeleter interface {
		// Delete removes the movement with the given id if it belongs to
		// owner. A missing id and a foreign id are both core.ErrNotFound.
		Delete(ctx context.Context, owner string, id int64) error
	}

	AccountCreator interface {
		// CreateAccount persists a new account, core.ErrAlreadyExists on
		// username collision.
		CreateAccount(ctx context.Context, a core.Account) error
	}

	AccountFinder interface {
		// FindAccount returns the account for username, core.ErrNotFound
		// if none is registered.
		FindAccount(ctx context.Context, username string) (core.Account, error)
	}
)
