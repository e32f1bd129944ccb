package kv

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
)

type experimentRepository struct {
	store  repository.KeyValueStore
	logger *slog.Logger
}

// NewExperimentRepository creates the experiment repository.
func NewExperimentRepository(store repository.KeyValueStore, logger *slog.Logger) repository.ExperimentRepository {
	return &experimentRepository{store: store, logger: logger}
}

// LoadTests restores all experiment definitions.
func (r *experimentRepository) LoadTests(ctx context.Context) ([]*entity.ABTest, error) {
	return loadDocument[[]*entity.ABTest](ctx, r.store, r.logger, keyExperiments)
}

// SaveTests durably replaces all experiment definitions.
func (r *experimentRepository) SaveTests(ctx context.Context, tests []*entity.ABTest) error {
	return saveDocument(ctx, r.store, keyExperiments, tests)
}

// LoadResults restores all experiment result rows.
func (r *experimentRepository) LoadResults(ctx context.Context) ([]*entity.ABTestResult, error) {
	return loadDocument[[]*entity.ABTestResult](ctx, r.store, r.logger, keyExperimentResults)
}

// SaveResults durably replaces all experiment result rows.
func (r *experimentRepository) SaveResults(ctx context.Context, results []*entity.ABTestResult) error {
	return saveDocument(ctx, r.store, keyExperimentResults, results)
}
