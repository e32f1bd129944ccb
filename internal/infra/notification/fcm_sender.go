// Package notification implements the push transport capability on
// Firebase Cloud Messaging.
package notification

import (
	"context"
	"fmt"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender creates a new Firebase push sender instance
func NewFCMSender(ctx context.Context, credentialsPath string) (service.PushSender, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &fcmSender{
		client: client,
	}, nil
}

// Deliver pushes one scheduled wellness notification to the user's
// device topic. The scheduling queue treats any error as a retryable
// transport failure.
func (s *fcmSender) Deliver(ctx context.Context, n *entity.ScheduledNotification) error {
	data := map[string]string{
		"notification_id": n.ID.String(),
		"type":            string(n.Content.Type),
		"category":        n.Content.Category,
	}
	for k, v := range n.Content.Data {
		data[k] = v
	}

	message := &messaging.Message{
		// Per-user topics keep the engine free of device-token bookkeeping;
		// the identity service manages topic subscriptions.
		Topic: "user-" + n.UserID,
		Notification: &messaging.Notification{
			Title:    n.Content.Title,
			Body:     n.Content.Body,
			ImageURL: n.Content.ImageURL,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}
