package kv

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
)

type preferenceRepository struct {
	store  repository.KeyValueStore
	logger *slog.Logger
}

// NewPreferenceRepository creates the delivery-preference repository.
func NewPreferenceRepository(store repository.KeyValueStore, logger *slog.Logger) repository.PreferenceRepository {
	return &preferenceRepository{store: store, logger: logger}
}

// LoadAll restores the user-id to preference map.
func (r *preferenceRepository) LoadAll(ctx context.Context) (map[string]*entity.NotificationPreferences, error) {
	prefs, err := loadDocument[map[string]*entity.NotificationPreferences](ctx, r.store, r.logger, keyPreferences)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = make(map[string]*entity.NotificationPreferences)
	}

	return prefs, nil
}

// SaveAll durably replaces the preference map.
func (r *preferenceRepository) SaveAll(ctx context.Context, prefs map[string]*entity.NotificationPreferences) error {
	return saveDocument(ctx, r.store, keyPreferences, prefs)
}
