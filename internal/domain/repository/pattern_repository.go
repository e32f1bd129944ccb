package repository

import (
	"context"

	"pulse/internal/domain/entity"
)

// PatternRepository persists the user-id to activity-pattern map.
type PatternRepository interface {
	// LoadAll restores the pattern map. A missing or corrupt document
	// degrades to an empty map.
	LoadAll(ctx context.Context) (map[string]*entity.UserActivityPattern, error)

	// SaveAll durably replaces the pattern map.
	SaveAll(ctx context.Context, patterns map[string]*entity.UserActivityPattern) error
}
