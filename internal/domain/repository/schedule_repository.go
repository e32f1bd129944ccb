package repository

import (
	"context"

	"pulse/internal/domain/entity"
)

// ScheduleRepository persists the scheduled-notification collection as
// one round-trippable document. The scheduling queue owns the in-memory
// copy and writes it back synchronously after every mutation.
type ScheduleRepository interface {
	// LoadAll restores the full collection. A missing or corrupt
	// document degrades to an empty collection.
	LoadAll(ctx context.Context) ([]*entity.ScheduledNotification, error)

	// SaveAll durably replaces the full collection.
	SaveAll(ctx context.Context, entries []*entity.ScheduledNotification) error
}
