// Package adapters bridges the SQLite repository and the movement service
// into the store ports, so callers stay unchanged across backends.
package adapters

import (
	"context"

	"finanzia/internal/core"
	"finanzia/internal/services"
	"finanzia/internal/storage"
	"finanzia/internal/store"
)

// SQLiteAdapter routes writes through the movement service (so they get
// mirrored over AMQP) and reads straight to the repository.
type SQLiteAdapter struct {
	storage *storage.Repository
	service *services.MovementService
}

// Ensure interface conformance
var (
	_ store.MovementAppender = (*SQLiteAdapter)(nil)
	_ store.MovementLister   = (*SQLiteAdapter)(nil)
	_ store.MovementDeleter  = (*SQLiteAdapter)(nil)
	_ store.AccountCreator   = (*SQLiteAdapter)(nil)
	_ store.AccountFinder    = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.Repository, service *services.MovementService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements store.MovementAppender.
func (a *SQLiteAdapter) Append(ctx context.Context, m core.Movement) (int64, error) {
	return a.service.CreateMovement(ctx, m)
}

// List implements store.MovementLister.
func (a *SQLiteAdapter) List(ctx context.Context, owner string, f store.MonthFilter) ([]core.Movement, error) {
	return a.storage.List(ctx, owner, f)
}

// Delete implements store.MovementDeleter.
func (a *SQLiteAdapter) Delete(ctx context.Context, owner string, id int64) error {
	return a.service.DeleteMovement(ctx, owner, id)
}

// CreateAccount implements store.AccountCreator.
func (a *SQLiteAdapter) CreateAccount(ctx context.Context, acc core.Account) error {
	return a.storage.CreateAccount(ctx, acc)
}

// FindAccount implements store.AccountFinder.
func (a *SQLiteAdapter) FindAccount(ctx context.Context, username string) (core.Account, error) {
	return a.storage.FindAccount(ctx, username)
}
