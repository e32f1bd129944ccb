package impl

import (
	"context"
	"sync"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type preferenceService struct {
	mu     sync.Mutex
	repo   repository.PreferenceRepository
	prefs  map[string]*entity.NotificationPreferences
	loaded bool
}

// PreferenceServiceParams holds dependencies for PreferenceService, injected by Fx.
type PreferenceServiceParams struct {
	fx.In

	PreferenceRepo repository.PreferenceRepository
}

// NewPreferenceService creates a new preference service instance
func NewPreferenceService(params PreferenceServiceParams) usecase.PreferenceUsecase {
	return &preferenceService{
		repo: params.PreferenceRepo,
	}
}

// Get returns the user's stored preferences, or the defaults when none exist
func (s *preferenceService) Get(ctx context.Context, userID string) (*entity.NotificationPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if prefs, ok := s.prefs[userID]; ok {
		return prefs, nil
	}

	return entity.DefaultPreferences(userID), nil
}

// Update validates and persists the user's preferences
func (s *preferenceService) Update(ctx context.Context, prefs *entity.NotificationPreferences) error {
	if prefs.UserID == "" {
		return domainerrors.ErrValidationFailed.WithDetails("userId is required")
	}
	if prefs.MaxDaily <= 0 {
		return domainerrors.ErrValidationFailed.WithDetails("maxDaily must be positive")
	}
	if prefs.QuietHoursEnabled {
		if !validClock(prefs.QuietHoursStart) || !validClock(prefs.QuietHoursEnd) {
			return domainerrors.ErrValidationFailed.WithDetails("quiet hours must be HH:MM")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.prefs[prefs.UserID] = prefs

	return errors.Wrap(s.repo.SaveAll(ctx, s.prefs), "failed to save preferences")
}

// ensureLoaded restores the preference map on first use. Callers hold
// the mutex.
func (s *preferenceService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	prefs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load preferences")
	}

	s.prefs = prefs
	s.loaded = true

	return nil
}

// validClock reports whether the value parses as a 24h HH:MM string.
func validClock(value string) bool {
	_, _, ok := parseClock(value)

	return ok
}
