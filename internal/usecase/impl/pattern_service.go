package impl

import (
	"context"
	"sync"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
	"pulse/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Hours that pair naturally with each notification type. Meal reminders
// around mealtimes, training around workout slots, and so on.
var typeHourBonus = map[entity.NotificationType]map[int]float64{
	entity.TypeMealReminder:     {7: 2, 8: 2, 12: 2, 13: 2, 18: 2, 19: 2},
	entity.TypeTrainingReminder: {9: 2, 10: 2, 11: 2, 19: 2, 20: 2, 21: 2},
	entity.TypeMotivational:     {8: 2, 9: 2, 17: 2, 18: 2},
	entity.TypeAchievement:      {17: 1, 18: 1, 19: 1, 20: 1},
}

type patternService struct {
	mu       sync.Mutex
	repo     repository.PatternRepository
	patterns map[string]*entity.UserActivityPattern
	loaded   bool
}

// PatternServiceParams holds dependencies for PatternService, injected by Fx.
type PatternServiceParams struct {
	fx.In

	PatternRepo repository.PatternRepository
}

// NewPatternService creates a new activity pattern service instance
func NewPatternService(params PatternServiceParams) usecase.PatternUsecase {
	return &patternService{
		repo: params.PatternRepo,
	}
}

// RecordActivity folds an observed activity into the user's pattern,
// creating the pattern on first sight.
func (s *patternService) RecordActivity(ctx context.Context, userID string, activeAt time.Time, interaction *usecase.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	pattern, ok := s.patterns[userID]
	if !ok {
		pattern = entity.NewUserActivityPattern(userID)
		s.patterns[userID] = pattern
	}

	pattern.TrackActiveHour(activeAt.Hour())
	pattern.LastActiveAt = activeAt

	weekday := int(activeAt.Weekday())
	pattern.WeeklyActivity[weekday] = min(pattern.WeeklyActivity[weekday]+0.1, 1.0)

	if interaction != nil {
		if interaction.Opened {
			pattern.EngagementScore = min(pattern.EngagementScore+0.05, 1.0)
			if interaction.ResponseMinutes > 0 {
				if pattern.AvgResponseMinutes == 0 {
					pattern.AvgResponseMinutes = interaction.ResponseMinutes
				} else {
					pattern.AvgResponseMinutes = (pattern.AvgResponseMinutes + interaction.ResponseMinutes) / 2
				}
			}
		} else {
			pattern.EngagementScore = max(pattern.EngagementScore-0.02, 0.0)
		}
	}

	return errors.Wrap(s.repo.SaveAll(ctx, s.patterns), "failed to save activity patterns")
}

// GetPattern returns the user's pattern, or nil when the user has never
// been observed.
func (s *patternService) GetPattern(ctx context.Context, userID string) (*entity.UserActivityPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	return s.patterns[userID], nil
}

// OptimalSendTime scans the next 12 hours and picks the highest scoring
// hour, preferring the earliest on ties. A candidate that lands at or
// before now is pushed to the same hour the following day.
func (s *patternService) OptimalSendTime(ctx context.Context, userID string, notificationType entity.NotificationType, now time.Time) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return time.Time{}, err
	}

	pattern, ok := s.patterns[userID]
	if !ok {
		next := now.Add(time.Hour)

		return time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), 0, 0, 0, next.Location()), nil
	}

	var best time.Time
	bestScore := 0.0
	for offset := 0; offset < 12; offset++ {
		candidate := now.Add(time.Duration(offset) * time.Hour)
		score := scoreHour(candidate.Hour(), pattern, notificationType)
		if best.IsZero() || score > bestScore {
			best = time.Date(candidate.Year(), candidate.Month(), candidate.Day(), candidate.Hour(), 0, 0, 0, candidate.Location())
			bestScore = score
		}
	}

	if !best.After(now) {
		best = best.AddDate(0, 0, 1)
	}

	return best, nil
}

// scoreHour rates an hour-of-day for a user and notification type.
// Higher is better; scores may go negative for late-night hours.
func scoreHour(hour int, pattern *entity.UserActivityPattern, notificationType entity.NotificationType) float64 {
	score := 0.0

	if pattern.IsActiveHour(hour) {
		score += 3
	}

	for _, preferred := range pattern.PreferredTimes {
		ph, pm, ok := parseClock(preferred)
		if !ok {
			continue
		}
		diff := ph*60 + pm - hour*60
		if diff < 0 {
			diff = -diff
		}
		if diff <= 60 {
			score += 2
		}
	}

	score += typeHourBonus[notificationType][hour]

	if hour < 6 || hour > 22 {
		score -= 2
	}

	return score
}

// ensureLoaded restores the pattern map on first use. Callers hold the
// mutex.
func (s *patternService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	patterns, err := s.repo.LoadAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load activity patterns")
	}

	s.patterns = patterns
	s.loaded = true

	return nil
}
