package kv

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
)

type patternRepository struct {
	store  repository.KeyValueStore
	logger *slog.Logger
}

// NewPatternRepository creates the activity-pattern repository.
func NewPatternRepository(store repository.KeyValueStore, logger *slog.Logger) repository.PatternRepository {
	return &patternRepository{store: store, logger: logger}
}

// LoadAll restores the user-id to activity-pattern map.
func (r *patternRepository) LoadAll(ctx context.Context) (map[string]*entity.UserActivityPattern, error) {
	patterns, err := loadDocument[map[string]*entity.UserActivityPattern](ctx, r.store, r.logger, keyPatterns)
	if err != nil {
		return nil, err
	}
	if patterns == nil {
		patterns = make(map[string]*entity.UserActivityPattern)
	}

	return patterns, nil
}

// SaveAll durably replaces the pattern map.
func (r *patternRepository) SaveAll(ctx context.Context, patterns map[string]*entity.UserActivityPattern) error {
	return saveDocument(ctx, r.store, keyPatterns, patterns)
}
