package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pulse/config"
	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type scheduleService struct {
	mu          sync.Mutex
	repo        repository.ScheduleRepository
	preferences usecase.PreferenceUsecase
	patterns    usecase.PatternUsecase
	analytics   usecase.AnalyticsUsecase
	pusher      service.PushSender
	publisher   service.EventPublisher
	clock       service.Clock
	logger      *slog.Logger
	maxAttempts int
	maxPerTick  int
	entries     []*entity.ScheduledNotification
	loaded      bool
}

// ScheduleServiceParams holds dependencies for ScheduleService, injected by Fx.
type ScheduleServiceParams struct {
	fx.In

	Config            *config.Config
	ScheduleRepo      repository.ScheduleRepository
	PreferenceUsecase usecase.PreferenceUsecase
	PatternUsecase    usecase.PatternUsecase
	AnalyticsUsecase  usecase.AnalyticsUsecase
	PushSender        service.PushSender
	EventPublisher    service.EventPublisher
	Clock             service.Clock
	Logger            *slog.Logger
}

// NewScheduleService creates a new scheduling queue service instance
func NewScheduleService(params ScheduleServiceParams) usecase.SchedulerUsecase {
	return &scheduleService{
		repo:        params.ScheduleRepo,
		preferences: params.PreferenceUsecase,
		patterns:    params.PatternUsecase,
		analytics:   params.AnalyticsUsecase,
		pusher:      params.PushSender,
		publisher:   params.EventPublisher,
		clock:       params.Clock,
		logger:      params.Logger,
		maxAttempts: params.Config.Scheduler.MaxDeliveryAttempts,
		maxPerTick:  params.Config.Scheduler.MaxPerTick,
	}
}

// Schedule validates the request and appends a pending entry. A send
// time in the past is accepted; the entry becomes due on the next tick.
func (s *scheduleService) Schedule(ctx context.Context, req *usecase.ScheduleRequest) (*entity.ScheduledNotification, error) {
	if req.UserID == "" {
		return nil, domainerrors.ErrInvalidSchedule.WithDetails("userId is required")
	}
	if req.Content.Title == "" && req.Content.Body == "" {
		return nil, domainerrors.ErrInvalidSchedule.WithDetails("content needs a title or a body")
	}
	if req.SendAt.IsZero() {
		return nil, domainerrors.ErrInvalidSchedule.WithDetails("sendAt is required")
	}
	if req.Recurring && req.Recurrence == nil {
		return nil, domainerrors.ErrInvalidSchedule.WithDetails("recurring entries need a recurrence pattern")
	}

	pattern, err := s.patterns.GetPattern(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	entry := &entity.ScheduledNotification{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Content:       req.Content,
		ScheduledAt:   req.SendAt,
		IsRecurring:   req.Recurring,
		Recurrence:    req.Recurrence,
		PriorityScore: priorityScore(req.Content, pattern),
		CreatedAt:     s.clock.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.entries = append(s.entries, entry)
	if err := s.repo.SaveAll(ctx, s.entries); err != nil {
		return nil, errors.Wrap(err, "failed to save scheduling queue")
	}

	s.logger.InfoContext(ctx, "notification scheduled",
		slog.String("notification_id", entry.ID.String()),
		slog.String("user_id", entry.UserID),
		slog.Time("scheduled_at", entry.ScheduledAt))

	return entry, nil
}

// Cancel removes a pending unsent entry. Cancelling an already delivered
// or unknown entry returns false; that race is expected, not an error.
func (s *scheduleService) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	for i, entry := range s.entries {
		if entry.ID != id {
			continue
		}
		if entry.Sent {
			return false, nil
		}

		s.entries = append(s.entries[:i], s.entries[i+1:]...)

		return true, errors.Wrap(s.repo.SaveAll(ctx, s.entries), "failed to save scheduling queue")
	}

	return false, nil
}

// ListPending returns the unsent entries of a user.
func (s *scheduleService) ListPending(ctx context.Context, userID string) ([]*entity.ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	pending := make([]*entity.ScheduledNotification, 0)
	for _, entry := range s.entries {
		if entry.UserID == userID && !entry.Sent {
			pending = append(pending, entry)
		}
	}

	return pending, nil
}

// ProcessDueNotifications delivers every due entry the delivery gate
// approves. Denied entries are pushed to their next allowed time, failed
// deliveries stay queued for the next tick, and a recurring delivery
// spawns a fresh entry for the next occurrence.
func (s *scheduleService) ProcessDueNotifications(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	processed := 0
	dirty := false
	var exhausted []uuid.UUID
	var spawned []*entity.ScheduledNotification

	for _, entry := range s.entries {
		if entry.Sent || entry.ScheduledAt.After(now) {
			continue
		}
		if processed >= s.maxPerTick {
			break
		}

		prefs, err := s.preferences.Get(ctx, entry.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load preferences, skipping entry",
				slog.String("notification_id", entry.ID.String()), slog.Any("error", err))

			continue
		}

		if !gateAllows(prefs, s.countSentToday(entry.UserID, now), now) {
			entry.ScheduledAt = nextAllowedTime(prefs, now)
			dirty = true
			s.logger.DebugContext(ctx, "delivery gated, rescheduled",
				slog.String("notification_id", entry.ID.String()),
				slog.Time("next_attempt", entry.ScheduledAt))

			continue
		}

		// Only delivery attempts consume the per-tick budget; gated or
		// skipped entries must not starve deliverable ones.
		processed++
		entry.Attempts++
		dirty = true

		if err := s.pusher.Deliver(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "delivery failed",
				slog.String("notification_id", entry.ID.String()),
				slog.Int("attempts", entry.Attempts),
				slog.Any("error", err))
			if entry.Attempts >= s.maxAttempts {
				exhausted = append(exhausted, entry.ID)
			}

			continue
		}

		sentAt := now
		entry.Sent = true
		entry.SentAt = &sentAt

		if err := s.analytics.RecordSent(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "failed to record analytics for delivery",
				slog.String("notification_id", entry.ID.String()), slog.Any("error", err))
		}

		s.publishDelivered(ctx, entry, now)

		if entry.IsRecurring {
			spawned = append(spawned, s.nextOccurrenceEntry(entry, now))
		}
	}

	if len(exhausted) > 0 {
		s.dropEntries(exhausted)
		s.logger.WarnContext(ctx, "dropped entries after exhausting delivery attempts",
			slog.Int("count", len(exhausted)))
	}
	s.entries = append(s.entries, spawned...)

	if !dirty && len(spawned) == 0 {
		return nil
	}

	return errors.Wrap(s.repo.SaveAll(ctx, s.entries), "failed to save scheduling queue")
}

// CleanupDelivered drops sent entries older than the cutoff.
func (s *scheduleService) CleanupDelivered(ctx context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.Sent && entry.SentAt != nil && entry.SentAt.Before(cutoff) {
			continue
		}
		kept = append(kept, entry)
	}

	if len(kept) == len(s.entries) {
		return nil
	}

	s.entries = kept

	return errors.Wrap(s.repo.SaveAll(ctx, s.entries), "failed to save scheduling queue")
}

// priorityScore computes the informational 1-10 urgency score of an
// entry from its declared priority, the user's engagement and the
// content category.
func priorityScore(content entity.NotificationContent, pattern *entity.UserActivityPattern) float64 {
	score := 5.0

	switch content.Priority {
	case entity.PriorityUrgent:
		score = 10
	case entity.PriorityHigh:
		score = 8
	case entity.PriorityNormal:
		score = 5
	case entity.PriorityLow:
		score = 2
	}

	if pattern != nil {
		score += pattern.EngagementScore * 2
	}

	switch content.Category {
	case "achievements":
		score++
	case "reminders":
		score--
	case "wellness":
		score -= 0.5
	}

	return min(max(score, 1), 10)
}

// nextOccurrenceEntry builds the sibling entry spawned by a recurring
// delivery.
func (s *scheduleService) nextOccurrenceEntry(entry *entity.ScheduledNotification, now time.Time) *entity.ScheduledNotification {
	return &entity.ScheduledNotification{
		ID:            uuid.New(),
		UserID:        entry.UserID,
		Content:       entry.Content,
		ScheduledAt:   entry.NextOccurrence(),
		IsRecurring:   true,
		Recurrence:    entry.Recurrence,
		PriorityScore: entry.PriorityScore,
		CreatedAt:     now,
	}
}

// countSentToday counts the user's deliveries on now's calendar day.
// Callers hold the mutex.
func (s *scheduleService) countSentToday(userID string, now time.Time) int {
	count := 0
	for _, entry := range s.entries {
		if entry.UserID != userID || !entry.Sent || entry.SentAt == nil {
			continue
		}
		y1, m1, d1 := entry.SentAt.Date()
		y2, m2, d2 := now.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			count++
		}
	}

	return count
}

// dropEntries removes the given IDs from the queue. Callers hold the
// mutex.
func (s *scheduleService) dropEntries(ids []uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if _, ok := drop[entry.ID]; !ok {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
}

// publishDelivered emits the delivery event; failures are logged, never
// propagated into the tick.
func (s *scheduleService) publishDelivered(ctx context.Context, entry *entity.ScheduledNotification, now time.Time) {
	event := &service.EngineEvent{
		Type:           service.EventNotificationDelivered,
		UserID:         entry.UserID,
		NotificationID: entry.ID.String(),
		OccurredAt:     now.Format(time.RFC3339),
	}
	if err := s.publisher.PublishEngineEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish delivery event",
			slog.String("notification_id", entry.ID.String()), slog.Any("error", err))
	}
}

// ensureLoaded restores the queue on first use. Callers hold the mutex.
func (s *scheduleService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	entries, err := s.repo.LoadAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load scheduling queue")
	}

	s.entries = entries
	s.loaded = true

	return nil
}
