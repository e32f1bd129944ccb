package kv

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/infra/persistence/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduleRepository_RoundTrip(t *testing.T) {
	store := memory.New()
	repo := NewScheduleRepository(store, testLogger())
	ctx := context.Background()

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded, "a missing key yields an empty collection")

	sentAt := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	entries := []*entity.ScheduledNotification{
		{
			ID:     uuid.New(),
			UserID: "user-1",
			Content: entity.NotificationContent{
				Title:    "Lunch",
				Type:     entity.TypeMealReminder,
				Category: "reminders",
				Data:     map[string]string{"recipe": "soup"},
			},
			ScheduledAt: sentAt,
			IsRecurring: true,
			Recurrence:  &entity.RecurrencePattern{Frequency: entity.FrequencyDaily, TimeOfDay: "12:00"},
			Sent:        true,
			SentAt:      &sentAt,
			Attempts:    1,
			CreatedAt:   sentAt.Add(-time.Hour),
		},
	}
	require.NoError(t, repo.SaveAll(ctx, entries))

	loaded, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, entries[0].ID, loaded[0].ID)
	assert.Equal(t, entries[0].Content, loaded[0].Content)
	assert.True(t, loaded[0].SentAt.Equal(sentAt))
	assert.Equal(t, entity.FrequencyDaily, loaded[0].Recurrence.Frequency)
}

func TestPatternRepository_CorruptDocumentDegradesToEmpty(t *testing.T) {
	store := memory.New()
	repo := NewPatternRepository(store, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, keyPatterns, []byte("{not json")))

	patterns, err := repo.LoadAll(ctx)
	require.NoError(t, err, "corruption recovers locally, it is not an error")
	assert.Empty(t, patterns)
}

func TestExperimentRepository_TestsAndResultsAreIndependent(t *testing.T) {
	store := memory.New()
	repo := NewExperimentRepository(store, testLogger())
	ctx := context.Background()

	test := &entity.ABTest{
		ID:      uuid.New(),
		Name:    "copy-test",
		Status:  entity.TestStatusRunning,
		StartAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Variants: []entity.ABTestVariant{
			{ID: "control", Weight: 50, IsControl: true},
			{ID: "b", Weight: 50},
		},
		PrimaryMetric:     entity.MetricOpenRate,
		MinimumSampleSize: 30,
		ConfidenceLevel:   95,
	}
	require.NoError(t, repo.SaveTests(ctx, []*entity.ABTest{test}))

	results, err := repo.LoadResults(ctx)
	require.NoError(t, err)
	assert.Empty(t, results, "saving tests does not touch results")

	tests, err := repo.LoadTests(ctx)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, test.Variants, tests[0].Variants)
}

func TestPreferenceRepository_MissingKeyYieldsUsableMap(t *testing.T) {
	store := memory.New()
	repo := NewPreferenceRepository(store, testLogger())
	ctx := context.Background()

	prefs, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, prefs)

	// The map must be writable straight away.
	prefs["user-1"] = entity.DefaultPreferences("user-1")
	require.NoError(t, repo.SaveAll(ctx, prefs))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultMaxDailyDeliveries, loaded["user-1"].MaxDaily)
}
