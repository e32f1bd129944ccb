package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type analyticsService struct {
	mu          sync.Mutex
	repo        repository.AnalyticsRepository
	patterns    usecase.PatternUsecase
	preferences usecase.PreferenceUsecase
	clock       service.Clock
	logger      *slog.Logger
	records     []*entity.AnalyticsRecord
	loaded      bool
}

// AnalyticsServiceParams holds dependencies for AnalyticsService, injected by Fx.
type AnalyticsServiceParams struct {
	fx.In

	AnalyticsRepo     repository.AnalyticsRepository
	PatternUsecase    usecase.PatternUsecase
	PreferenceUsecase usecase.PreferenceUsecase
	Clock             service.Clock
	Logger            *slog.Logger
}

// NewAnalyticsService creates a new engagement analytics service instance
func NewAnalyticsService(params AnalyticsServiceParams) usecase.AnalyticsUsecase {
	return &analyticsService{
		repo:        params.AnalyticsRepo,
		patterns:    params.PatternUsecase,
		preferences: params.PreferenceUsecase,
		clock:       params.Clock,
		logger:      params.Logger,
	}
}

// RecordSent appends a record for a just-delivered notification.
func (s *analyticsService) RecordSent(ctx context.Context, notification *entity.ScheduledNotification) error {
	sentAt := s.clock.Now()
	if notification.SentAt != nil {
		sentAt = *notification.SentAt
	}

	deviceClass := entity.DefaultDeviceClass
	if prefs, err := s.preferences.Get(ctx, notification.UserID); err == nil {
		deviceClass = prefs.DeviceClass
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.records = append(s.records, &entity.AnalyticsRecord{
		ID:             uuid.New(),
		UserID:         notification.UserID,
		NotificationID: notification.ID,
		Type:           notification.Content.Type,
		Category:       notification.Content.Category,
		SentAt:         sentAt,
		DeviceClass:    deviceClass,
		TimeOfDay:      entity.BucketForHour(sentAt.Hour()),
		Weekday:        sentAt.Weekday(),
	})

	return errors.Wrap(s.repo.SaveAll(ctx, s.records), "failed to save analytics records")
}

// RecordInteraction updates the matching record for an opened, clicked or
// dismissed event. A click on a never-opened notification marks it opened
// at the same instant. The interaction is also folded into the user's
// activity pattern.
func (s *analyticsService) RecordInteraction(ctx context.Context, notificationID uuid.UUID, userID string, kind entity.InteractionKind) error {
	now := s.clock.Now()

	s.mu.Lock()

	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()

		return err
	}

	record := s.findRecord(notificationID, userID)
	if record == nil {
		s.mu.Unlock()

		return domainerrors.ErrNotFound.WithDetails("no analytics record for notification " + notificationID.String())
	}

	s.applyInteraction(record, kind, now)

	if err := s.repo.SaveAll(ctx, s.records); err != nil {
		s.mu.Unlock()

		return errors.Wrap(err, "failed to save analytics records")
	}

	interaction := &usecase.Interaction{
		Opened:          kind == entity.InteractionOpened || kind == entity.InteractionClicked,
		ResponseMinutes: float64(record.ResponseMinutes),
	}
	s.mu.Unlock()

	if err := s.patterns.RecordActivity(ctx, userID, now, interaction); err != nil {
		s.logger.WarnContext(ctx, "failed to fold interaction into activity pattern",
			slog.String("user_id", userID), slog.Any("error", err))
	}

	return nil
}

// Summary aggregates the user's records within the window.
func (s *analyticsService) Summary(ctx context.Context, userID, window string) (*entity.EngagementSummary, error) {
	since, err := s.windowStart(window)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	summary := &entity.EngagementSummary{
		UserID:      userID,
		Window:      window,
		ByCategory:  make(map[string]int),
		ByTimeOfDay: make(map[entity.TimeOfDayBucket]int),
	}

	responseTotal := 0.0
	for _, record := range s.records {
		if record.UserID != userID || record.SentAt.Before(since) {
			continue
		}

		summary.Sent++
		summary.ByCategory[record.Category]++
		summary.ByTimeOfDay[record.TimeOfDay]++

		if record.Opened {
			summary.Opened++
			responseTotal += float64(record.ResponseMinutes)
		}
		if record.Clicked {
			summary.Clicked++
		}
		if record.Dismissed {
			summary.Dismissed++
		}
	}

	if summary.Sent > 0 {
		summary.OpenRate = 100 * float64(summary.Opened) / float64(summary.Sent)
		summary.ClickRate = 100 * float64(summary.Clicked) / float64(summary.Sent)
		summary.DismissRate = 100 * float64(summary.Dismissed) / float64(summary.Sent)
	}
	if summary.Opened > 0 {
		summary.AvgResponseMinutes = responseTotal / float64(summary.Opened)
	}

	return summary, nil
}

// PurgeOlderThan drops records sent before the cutoff.
func (s *analyticsService) PurgeOlderThan(ctx context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	kept := s.records[:0]
	for _, record := range s.records {
		if !record.SentAt.Before(cutoff) {
			kept = append(kept, record)
		}
	}

	if len(kept) == len(s.records) {
		return nil
	}

	s.records = kept

	return errors.Wrap(s.repo.SaveAll(ctx, s.records), "failed to save analytics records")
}

// applyInteraction mutates the record for one interaction kind. The
// response time is measured once, at the first open.
func (s *analyticsService) applyInteraction(record *entity.AnalyticsRecord, kind entity.InteractionKind, now time.Time) {
	markOpened := func(at time.Time) {
		if record.Opened {
			return
		}
		record.Opened = true
		record.OpenedAt = &at
		record.ResponseMinutes = int(at.Sub(record.SentAt) / time.Minute)
	}

	switch kind {
	case entity.InteractionOpened:
		markOpened(now)
	case entity.InteractionClicked:
		markOpened(now)
		if !record.Clicked {
			record.Clicked = true
			record.ClickedAt = &now
		}
	case entity.InteractionDismissed:
		if !record.Dismissed {
			record.Dismissed = true
			record.DismissedAt = &now
		}
	}
}

// findRecord locates a record by notification and user. Callers hold the
// mutex.
func (s *analyticsService) findRecord(notificationID uuid.UUID, userID string) *entity.AnalyticsRecord {
	for _, record := range s.records {
		if record.NotificationID == notificationID && record.UserID == userID {
			return record
		}
	}

	return nil
}

// windowStart maps a window name to its inclusive start instant.
func (s *analyticsService) windowStart(window string) (time.Time, error) {
	now := s.clock.Now()

	switch window {
	case usecase.WindowDay:
		return now.Add(-24 * time.Hour), nil
	case usecase.WindowWeek:
		return now.Add(-7 * 24 * time.Hour), nil
	case usecase.WindowMonth:
		return now.Add(-30 * 24 * time.Hour), nil
	default:
		return time.Time{}, domainerrors.ErrValidationFailed.WithDetails("window must be day, week or month")
	}
}

// ensureLoaded restores the record log on first use. Callers hold the
// mutex.
func (s *analyticsService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load analytics records")
	}

	s.records = records
	s.loaded = true

	return nil
}
