package usecase

import (
	"context"
	"time"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// Analytics window names accepted by Summary.
const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
)

// AnalyticsUsecase records delivery and interaction events and serves
// engagement rollups.
type AnalyticsUsecase interface {
	// RecordSent appends a record for a just-delivered notification.
	RecordSent(ctx context.Context, notification *entity.ScheduledNotification) error

	// RecordInteraction updates the matching record for an opened,
	// clicked or dismissed event and forwards it to the pattern
	// tracker. Clicking implies opening.
	RecordInteraction(ctx context.Context, notificationID uuid.UUID, userID string, kind entity.InteractionKind) error

	// Summary aggregates the user's records within the window.
	Summary(ctx context.Context, userID, window string) (*entity.EngagementSummary, error)

	// PurgeOlderThan drops records sent before the cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) error
}
