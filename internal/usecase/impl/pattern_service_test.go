package impl

import (
	"context"
	"testing"

	"pulse/internal/domain/entity"
	"pulse/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternService_RecordActivity_CreatesPatternOnFirstSight(t *testing.T) {
	engine := newTestEngine(t, at(10, 0))
	ctx := context.Background()

	pattern, err := engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, pattern, "unseen user has no pattern")

	require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(10, 15), nil))

	pattern, err = engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, pattern)
	assert.Equal(t, []int{10}, pattern.MostActiveHours)
	assert.Equal(t, []string{"09:00", "19:00"}, pattern.PreferredTimes)
	assert.InDelta(t, entity.DefaultEngagementScore, pattern.EngagementScore, 1e-9)
	assert.Equal(t, at(10, 15), pattern.LastActiveAt)
}

func TestPatternService_ActiveHoursEvictOldestBeyondCap(t *testing.T) {
	engine := newTestEngine(t, at(8, 0))
	ctx := context.Background()

	for hour := 8; hour < 8+entity.MaxTrackedActiveHours+1; hour++ {
		require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(hour, 0), nil))
	}

	pattern, err := engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, pattern.MostActiveHours, entity.MaxTrackedActiveHours)
	assert.NotContains(t, pattern.MostActiveHours, 8, "oldest hour is evicted first")
	assert.Contains(t, pattern.MostActiveHours, 14)

	// A known hour neither duplicates nor reorders the set.
	require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(14, 30), nil))
	pattern, err = engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, pattern.MostActiveHours, entity.MaxTrackedActiveHours)
}

func TestPatternService_EngagementScoreStaysBounded(t *testing.T) {
	engine := newTestEngine(t, at(9, 0))
	ctx := context.Background()

	opened := &usecase.Interaction{Opened: true}
	for i := 0; i < 20; i++ {
		require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(9, 0), opened))
	}
	pattern, err := engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pattern.EngagementScore, 1e-9, "score saturates at 1.0")

	ignored := &usecase.Interaction{Opened: false}
	for i := 0; i < 60; i++ {
		require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(9, 0), ignored))
	}
	pattern, err = engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pattern.EngagementScore, 1e-9, "score floors at 0.0")
}

func TestPatternService_ResponseAverageSeedsThenHalves(t *testing.T) {
	engine := newTestEngine(t, at(9, 0))
	ctx := context.Background()

	require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(9, 0),
		&usecase.Interaction{Opened: true, ResponseMinutes: 10}))
	pattern, err := engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pattern.AvgResponseMinutes, 1e-9, "first observation seeds directly")

	require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(9, 0),
		&usecase.Interaction{Opened: true, ResponseMinutes: 20}))
	pattern, err = engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, pattern.AvgResponseMinutes, 1e-9)
}

func TestPatternService_WeeklyActivitySaturates(t *testing.T) {
	engine := newTestEngine(t, at(9, 0))
	ctx := context.Background()

	day := at(9, 0)
	for i := 0; i < 15; i++ {
		require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", day, nil))
	}

	pattern, err := engine.patterns.GetPattern(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pattern.WeeklyActivity[int(day.Weekday())], 1e-9)
}

func TestPatternService_OptimalSendTime_DefaultsToNextHour(t *testing.T) {
	engine := newTestEngine(t, at(8, 30))
	ctx := context.Background()

	optimal, err := engine.patterns.OptimalSendTime(ctx, "unseen", entity.TypeMotivational, at(8, 30))
	require.NoError(t, err)
	assert.Equal(t, at(9, 0), optimal, "users without a pattern get the top of the next hour")
}

func TestPatternService_OptimalSendTime_PrefersActiveHour(t *testing.T) {
	engine := newTestEngine(t, at(8, 30))
	ctx := context.Background()

	// Hour 10 becomes active (+3) and sits within an hour of the 09:00
	// preferred time (+2), beating every mealtime bonus in the window.
	require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(10, 0), nil))

	optimal, err := engine.patterns.OptimalSendTime(ctx, "user-1", entity.TypeMealReminder, at(8, 30))
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), optimal)
}

func TestPatternService_OptimalSendTime_NeverReturnsThePast(t *testing.T) {
	engine := newTestEngine(t, at(22, 0))
	ctx := context.Background()

	require.NoError(t, engine.patterns.RecordActivity(ctx, "user-1", at(22, 5), nil))

	now := at(22, 30)
	optimal, err := engine.patterns.OptimalSendTime(ctx, "user-1", entity.TypeWellnessTip, now)
	require.NoError(t, err)
	assert.True(t, optimal.After(now), "optimal time must be strictly in the future, got %v", optimal)
}

func TestScoreHour_TypeBonusesAndLateNightPenalty(t *testing.T) {
	pattern := entity.NewUserActivityPattern("user-1")
	pattern.PreferredTimes = nil

	assert.InDelta(t, 2.0, scoreHour(12, pattern, entity.TypeMealReminder), 1e-9)
	assert.InDelta(t, 2.0, scoreHour(20, pattern, entity.TypeTrainingReminder), 1e-9)
	assert.InDelta(t, 1.0, scoreHour(18, pattern, entity.TypeAchievement), 1e-9)
	assert.InDelta(t, -2.0, scoreHour(23, pattern, entity.TypeWellnessTip), 1e-9)
	assert.InDelta(t, -2.0, scoreHour(5, pattern, entity.TypeWellnessTip), 1e-9)
	assert.InDelta(t, 0.0, scoreHour(6, pattern, entity.TypeWellnessTip), 1e-9)

	pattern.MostActiveHours = []int{12}
	assert.InDelta(t, 5.0, scoreHour(12, pattern, entity.TypeMealReminder), 1e-9)
}
