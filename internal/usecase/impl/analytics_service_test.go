package impl

import (
	"context"
	"testing"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentNotification(userID string, sentAt time.Time) *entity.ScheduledNotification {
	return &entity.ScheduledNotification{
		ID:     uuid.New(),
		UserID: userID,
		Content: entity.NotificationContent{
			Title:    "Lunch time",
			Type:     entity.TypeMealReminder,
			Category: "reminders",
		},
		ScheduledAt: sentAt,
		Sent:        true,
		SentAt:      &sentAt,
	}
}

func TestAnalyticsService_RecordSentCapturesDeliveryContext(t *testing.T) {
	engine := newTestEngine(t, at(13, 0))
	ctx := context.Background()

	require.NoError(t, engine.analytics.RecordSent(ctx, sentNotification("user-1", at(13, 0))))

	summary, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.ByCategory["reminders"])
	assert.Equal(t, 1, summary.ByTimeOfDay[entity.BucketAfternoon])
}

func TestAnalyticsService_OpenRateIsExact(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	notifications := make([]*entity.ScheduledNotification, 4)
	for i := range notifications {
		notifications[i] = sentNotification("user-1", at(10, 0))
		require.NoError(t, engine.analytics.RecordSent(ctx, notifications[i]))
	}

	require.NoError(t, engine.analytics.RecordInteraction(ctx, notifications[0].ID, "user-1", entity.InteractionOpened))

	summary, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowDay)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Sent)
	assert.Equal(t, 1, summary.Opened)
	assert.InDelta(t, 25.0, summary.OpenRate, 1e-9)
	assert.InDelta(t, 0.0, summary.ClickRate, 1e-9)
}

func TestAnalyticsService_ClickImpliesOpenAtSameInstant(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	notification := sentNotification("user-1", at(10, 0))
	require.NoError(t, engine.analytics.RecordSent(ctx, notification))

	engine.clock.Set(at(10, 5))
	require.NoError(t, engine.analytics.RecordInteraction(ctx, notification.ID, "user-1", entity.InteractionClicked))

	summary, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Opened, "a click on an unopened notification counts as an open")
	assert.Equal(t, 1, summary.Clicked)
	assert.InDelta(t, 5.0, summary.AvgResponseMinutes, 1e-9)
}

func TestAnalyticsService_ResponseMinutesTruncate(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	notification := sentNotification("user-1", at(10, 0))
	require.NoError(t, engine.analytics.RecordSent(ctx, notification))

	engine.clock.Set(at(10, 1).Add(30 * time.Second))
	require.NoError(t, engine.analytics.RecordInteraction(ctx, notification.ID, "user-1", entity.InteractionOpened))

	summary, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowDay)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, summary.AvgResponseMinutes, 1e-9, "response time truncates to whole minutes")
}

func TestAnalyticsService_DismissLowersEngagement(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	notification := sentNotification("user-1", at(10, 0))
	require.NoError(t, engine.analytics.RecordSent(ctx, notification))
	require.NoError(t, engine.analytics.RecordInteraction(ctx, notification.ID, "user-1", entity.InteractionDismissed))

	pattern, err := engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, pattern, "the interaction reaches the pattern tracker")
	assert.InDelta(t, entity.DefaultEngagementScore-0.02, pattern.EngagementScore, 1e-9)

	summary, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Dismissed)
	assert.Equal(t, 0, summary.Opened)
}

func TestAnalyticsService_UnknownNotificationIsNotFound(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))

	err := engine.analytics.RecordInteraction(context.Background(), uuid.New(), "user-1", entity.InteractionOpened)
	assert.Error(t, err)
}

func TestAnalyticsService_WindowExcludesOlderRecords(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	require.NoError(t, engine.analytics.RecordSent(ctx, sentNotification("user-1", at(10, 0).AddDate(0, 0, -8))))
	require.NoError(t, engine.analytics.RecordSent(ctx, sentNotification("user-1", at(9, 0))))

	week, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowWeek)
	require.NoError(t, err)
	assert.Equal(t, 1, week.Sent)

	month, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, month.Sent)
}

func TestAnalyticsService_InvalidWindowRejected(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))

	_, err := engine.analytics.Summary(context.Background(), "user-1", "fortnight")
	assert.Error(t, err)
}

func TestAnalyticsService_ZeroSentMeansZeroRates(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))

	summary, err := engine.analytics.Summary(context.Background(), "user-1", usecase.WindowDay)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.InDelta(t, 0.0, summary.OpenRate, 1e-9)
	assert.InDelta(t, 0.0, summary.AvgResponseMinutes, 1e-9)
}

func TestAnalyticsService_PurgeOlderThan(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	require.NoError(t, engine.analytics.RecordSent(ctx, sentNotification("user-1", at(10, 0).AddDate(0, 0, -100))))
	require.NoError(t, engine.analytics.RecordSent(ctx, sentNotification("user-1", at(9, 0))))

	require.NoError(t, engine.analytics.PurgeOlderThan(ctx, at(10, 0).AddDate(0, 0, -90)))

	summary, err := engine.analytics.Summary(ctx, "user-1", usecase.WindowMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
}
