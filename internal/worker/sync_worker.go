// Package worker mirrors SQLite-backed writes into the Google Sheets
// variant, keeping the two record store backends functionally equivalent.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzia/internal/amqp"
	"finanzia/internal/core"
	sheet "finanzia/internal/store/google"
	"finanzia/internal/storage"
)

type SyncWorker struct {
	storage *storage.Repository
	sheet   *sheet.Client
}

func NewSyncWorker(storage *storage.Repository, sheet *sheet.Client) *SyncWorker {
	return &SyncWorker{
		storage: storage,
		sheet:   sheet,
	}
}

// HandleSyncMessage processes one mirror request from the queue. Errors
// returned here make the consumer requeue the delivery.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.MovementSyncMessage) error {
	switch msg.Action {
	case amqp.ActionUpsert:
		return w.mirrorAppend(ctx, msg.ID)
	case amqp.ActionDelete:
		return w.mirrorDelete(ctx, msg.Owner, msg.ID)
	default:
		// Unknown actions are dropped; requeueing them forever helps nobody.
		slog.WarnContext(ctx, "Unknown sync action, dropping", "action", msg.Action, "id", msg.ID)
		return nil
	}
}

func (w *SyncWorker) mirrorAppend(ctx context.Context, id int64) error {
	m, err := w.storage.GetMovement(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted locally before the mirror ran; the delete message will
		// follow, and there is nothing to copy.
		slog.WarnContext(ctx, "Movement gone before mirror, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get movement %d: %w", id, err)
	}

	if err := w.sheet.AppendWithID(ctx, m); err != nil {
		return fmt.Errorf("mirror movement %d to sheet: %w", id, err)
	}

	slog.InfoContext(ctx, "Movement mirrored to sheet",
		"id", id,
		"kind", m.Kind,
		"owner", m.Owner)
	return nil
}

func (w *SyncWorker) mirrorDelete(ctx context.Context, owner string, id int64) error {
	err := w.sheet.Delete(ctx, owner, id)
	if errors.Is(err, core.ErrNotFound) {
		// Never mirrored, or already removed. Either way the sheet agrees.
		slog.WarnContext(ctx, "Movement not in sheet, nothing to delete", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete movement %d from sheet: %w", id, err)
	}

	slog.InfoContext(ctx, "Movement deletion mirrored to sheet", "id", id, "owner", owner)
	return nil
}
