// Package services orchestrates the SQLite-backed write path: local writes
// first, then a best-effort sync message so the worker can mirror the
// change into the sheet variant.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finanzia/internal/amqp"
	"finanzia/internal/core"
	"finanzia/internal/storage"
)

type MovementService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewMovementService(storage *storage.Repository, amqpClient *amqp.Client) *MovementService {
	return &MovementService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateMovement saves a movement locally and publishes a sync message.
func (s *MovementService) CreateMovement(ctx context.Context, m core.Movement) (int64, error) {
	id, err := s.storage.Append(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("save movement: %w", err)
	}

	// Async mirror is best effort; the local write already succeeded.
	if err := s.publish(ctx, id, m.Owner, amqp.ActionUpsert); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return id, nil
}

// DeleteMovement deletes a movement locally and publishes a delete message.
func (s *MovementService) DeleteMovement(ctx context.Context, owner string, id int64) error {
	if err := s.storage.Delete(ctx, owner, id); err != nil {
		return err
	}

	if err := s.publish(ctx, id, owner, amqp.ActionDelete); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *MovementService) publish(ctx context.Context, id int64, owner, action string) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishMovementSync(ctx, id, owner, action)
}

// Close closes both storage and AMQP connections.
func (s *MovementService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close movement service: %v", errs)
	}

	return nil
}
