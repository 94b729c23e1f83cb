// Package ledger implements the movement operations: append, list and
// delete, every one scoped by an authenticated session.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finanzia/internal/core"
	"finanzia/internal/store"
)

// Records is the slice of the backend the ledger needs.
type Records interface {
	store.MovementAppender
	store.MovementLister
	store.MovementDeleter
}

type Service struct {
	records Records
}

func NewService(records Records) *Service {
	return &Service{records: records}
}

// Append records a new movement for the session's user. Date and owner are
// assigned here, never taken from the caller; the id comes back from the
// record store.
func (s *Service) Append(ctx context.Context, sess core.Session, kind core.Kind, category core.Category, amount core.Money, note string) (core.Movement, error) {
	m := core.Movement{
		Date:     time.Now().UTC(),
		Kind:     kind,
		Category: category,
		Amount:   amount,
		Note:     strings.TrimSpace(note),
		Owner:    sess.Username,
	}
	if err := m.Validate(); err != nil {
		return core.Movement{}, err
	}
	id, err := s.records.Append(ctx, m)
	if err != nil {
		return core.Movement{}, fmt.Errorf("append movement: %w", err)
	}
	m.ID = id

	slog.InfoContext(ctx, "Movement appended",
		"id", m.ID,
		"kind", m.Kind,
		"category", m.Category,
		"amount_cents", m.Amount.Cents,
		"owner", m.Owner)

	return m, nil
}

// List returns the session user's movements, newest first, optionally
// restricted to one month. Reading twice without intervening writes yields
// the same sequence.
func (s *Service) List(ctx context.Context, sess core.Session, f store.MonthFilter) ([]core.Movement, error) {
	out, err := s.records.List(ctx, sess.Username, f)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}

// Delete removes the movement with the given id if it belongs to the
// session's user. Absence and foreign ownership both come back as
// core.ErrNotFound.
func (s *Service) Delete(ctx context.Context, sess core.Session, id int64) error {
	if err := s.records.Delete(ctx, sess.Username, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Movement deleted", "id", id, "owner", sess.Username)
	return nil
}
