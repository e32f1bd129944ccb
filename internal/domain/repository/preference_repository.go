package repository

import (
	"context"

	"pulse/internal/domain/entity"
)

// PreferenceRepository persists the user-id to delivery-preferences map.
type PreferenceRepository interface {
	// LoadAll restores the preference map. A missing or corrupt document
	// degrades to an empty map.
	LoadAll(ctx context.Context) (map[string]*entity.NotificationPreferences, error)

	// SaveAll durably replaces the preference map.
	SaveAll(ctx context.Context, prefs map[string]*entity.NotificationPreferences) error
}
