package kv

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
)

type scheduleRepository struct {
	store  repository.KeyValueStore
	logger *slog.Logger
}

// NewScheduleRepository creates the scheduled-notification repository.
func NewScheduleRepository(store repository.KeyValueStore, logger *slog.Logger) repository.ScheduleRepository {
	return &scheduleRepository{store: store, logger: logger}
}

// LoadAll restores the scheduled-notification collection.
func (r *scheduleRepository) LoadAll(ctx context.Context) ([]*entity.ScheduledNotification, error) {
	return loadDocument[[]*entity.ScheduledNotification](ctx, r.store, r.logger, keySchedule)
}

// SaveAll durably replaces the scheduled-notification collection.
func (r *scheduleRepository) SaveAll(ctx context.Context, entries []*entity.ScheduledNotification) error {
	return saveDocument(ctx, r.store, keySchedule, entries)
}
