package usecase

import (
	"context"
	"time"

	"pulse/internal/domain/entity"
)

// Interaction is the engagement feedback folded into a user's pattern.
type Interaction struct {
	Opened          bool    `json:"opened"`
	ResponseMinutes float64 `json:"response_minutes"`
}

// PatternUsecase maintains per-user activity patterns and derives
// optimal delivery times from them.
type PatternUsecase interface {
	// RecordActivity folds an observed activity (and optionally an
	// interaction) into the user's pattern, creating it on first use.
	RecordActivity(ctx context.Context, userID string, activeAt time.Time, interaction *Interaction) error

	// GetPattern returns the user's pattern, or nil when the user has
	// never been observed.
	GetPattern(ctx context.Context, userID string) (*entity.UserActivityPattern, error)

	// OptimalSendTime picks the best delivery time within the next 12
	// hours for the given notification type. Users without a pattern
	// default to the top of the next hour.
	OptimalSendTime(ctx context.Context, userID string, notificationType entity.NotificationType, now time.Time) (time.Time, error)
}
