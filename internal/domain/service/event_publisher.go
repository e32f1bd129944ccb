package service

import (
	"context"
)

// Engine event types published to the rest of the application.
const (
	EventNotificationDelivered = "notification.delivered"
	EventExperimentCompleted   = "experiment.completed"
)

// EngineEvent is an event emitted by the scheduling engine for async
// consumers (dashboards, achievement processing).
type EngineEvent struct {
	RequestID      string `json:"request_id,omitempty"` // For distributed tracing
	Type           string `json:"type"`
	UserID         string `json:"user_id,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
	TestID         string `json:"test_id,omitempty"`
	OccurredAt     string `json:"occurred_at"` // RFC3339
}

// EventPublisher defines the interface for publishing engine events to a
// message queue
type EventPublisher interface {
	// PublishEngineEvent publishes an engine event for async processing
	PublishEngineEvent(ctx context.Context, event *EngineEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
