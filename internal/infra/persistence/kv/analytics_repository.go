package kv

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
)

type analyticsRepository struct {
	store  repository.KeyValueStore
	logger *slog.Logger
}

// NewAnalyticsRepository creates the analytics-record repository.
func NewAnalyticsRepository(store repository.KeyValueStore, logger *slog.Logger) repository.AnalyticsRepository {
	return &analyticsRepository{store: store, logger: logger}
}

// LoadAll restores the analytics records.
func (r *analyticsRepository) LoadAll(ctx context.Context) ([]*entity.AnalyticsRecord, error) {
	return loadDocument[[]*entity.AnalyticsRecord](ctx, r.store, r.logger, keyAnalytics)
}

// SaveAll durably replaces the analytics records.
func (r *analyticsRepository) SaveAll(ctx context.Context, records []*entity.AnalyticsRecord) error {
	return saveDocument(ctx, r.store, keyAnalytics, records)
}
