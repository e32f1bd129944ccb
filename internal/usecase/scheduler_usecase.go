// Package usecase defines the interfaces of the engine's application
// layer.
package usecase

import (
	"context"
	"time"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ScheduleRequest carries everything needed to enqueue a notification.
type ScheduleRequest struct {
	UserID     string                     `json:"user_id"`
	Content    entity.NotificationContent `json:"content"`
	SendAt     time.Time                  `json:"send_at"`
	Recurring  bool                       `json:"recurring"`
	Recurrence *entity.RecurrencePattern  `json:"recurrence,omitempty"`
}

// SchedulerUsecase owns the scheduling queue and its processing loop.
type SchedulerUsecase interface {
	// Schedule validates the request and appends a pending entry.
	// Past-due send times are accepted and become due at the next tick.
	Schedule(ctx context.Context, req *ScheduleRequest) (*entity.ScheduledNotification, error)

	// Cancel removes a pending unsent entry. It returns false when the
	// entry does not exist or was already delivered; that is an
	// expected race, not an error.
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)

	// ListPending returns the unsent entries of a user.
	ListPending(ctx context.Context, userID string) ([]*entity.ScheduledNotification, error)

	// ProcessDueNotifications delivers every due entry the delivery
	// gate approves and reschedules the ones it denies. Invoked by the
	// periodic tick.
	ProcessDueNotifications(ctx context.Context, now time.Time) error

	// CleanupDelivered drops sent entries older than the cutoff.
	CleanupDelivered(ctx context.Context, cutoff time.Time) error
}
