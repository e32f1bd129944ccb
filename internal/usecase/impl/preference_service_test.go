package impl

import (
	"context"
	"testing"

	"pulse/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceService_GetReturnsDefaultsForUnknownUser(t *testing.T) {
	engine := newTestEngine(t, at(9, 0))

	prefs, err := engine.preferences.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", prefs.UserID)
	assert.False(t, prefs.QuietHoursEnabled)
	assert.Equal(t, entity.DefaultMaxDailyDeliveries, prefs.MaxDaily)
	assert.Equal(t, entity.DefaultDeviceClass, prefs.DeviceClass)
}

func TestPreferenceService_UpdateThenGet(t *testing.T) {
	engine := newTestEngine(t, at(9, 0))
	ctx := context.Background()

	prefs := entity.DefaultPreferences("user-1")
	prefs.QuietHoursEnabled = true
	prefs.QuietHoursStart = "21:30"
	prefs.QuietHoursEnd = "07:00"
	prefs.MaxDaily = 3
	require.NoError(t, engine.preferences.Update(ctx, prefs))

	loaded, err := engine.preferences.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "21:30", loaded.QuietHoursStart)
	assert.Equal(t, 3, loaded.MaxDaily)
}

func TestPreferenceService_UpdateValidation(t *testing.T) {
	engine := newTestEngine(t, at(9, 0))
	ctx := context.Background()

	missingUser := entity.DefaultPreferences("")
	assert.Error(t, engine.preferences.Update(ctx, missingUser))

	zeroCap := entity.DefaultPreferences("user-1")
	zeroCap.MaxDaily = 0
	assert.Error(t, engine.preferences.Update(ctx, zeroCap))

	badClock := entity.DefaultPreferences("user-1")
	badClock.QuietHoursEnabled = true
	badClock.QuietHoursStart = "25:00"
	assert.Error(t, engine.preferences.Update(ctx, badClock))

	// Malformed quiet hours only matter when the window is enabled.
	disabled := entity.DefaultPreferences("user-1")
	disabled.QuietHoursStart = "not-a-clock"
	assert.NoError(t, engine.preferences.Update(ctx, disabled))
}
