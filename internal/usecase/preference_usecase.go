package usecase

import (
	"context"

	"pulse/internal/domain/entity"
)

// PreferenceUsecase manages per-user delivery preferences.
type PreferenceUsecase interface {
	// Get returns the user's stored preferences, or the defaults when
	// none exist.
	Get(ctx context.Context, userID string) (*entity.NotificationPreferences, error)

	// Update validates and persists the user's preferences.
	Update(ctx context.Context, prefs *entity.NotificationPreferences) error
}
