// Package service defines interfaces for external capabilities consumed
// by the engine.
package service

import (
	"context"

	"pulse/internal/domain/entity"
)

// PushSender is the notification transport capability. The engine treats
// it as a black box: a failed delivery leaves the scheduling entry unsent
// and it is retried on a later tick.
type PushSender interface {
	// Deliver pushes one notification to the user's device.
	Deliver(ctx context.Context, notification *entity.ScheduledNotification) error
}
