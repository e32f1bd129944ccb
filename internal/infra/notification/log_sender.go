package notification

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"
)

// logSender is the transport used when Firebase is not configured. It
// logs each delivery instead of pushing it, which keeps local
// development and tests free of external calls.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only push transport.
func NewLogSender(logger *slog.Logger) service.PushSender {
	return &logSender{logger: logger}
}

// Deliver implements PushSender.
func (s *logSender) Deliver(ctx context.Context, n *entity.ScheduledNotification) error {
	s.logger.InfoContext(ctx, "[LogSender] delivering notification",
		slog.String("notification_id", n.ID.String()),
		slog.String("user_id", n.UserID),
		slog.String("title", n.Content.Title),
		slog.String("type", string(n.Content.Type)),
	)

	return nil
}
