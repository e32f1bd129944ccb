package impl

import (
	"testing"
	"time"

	"pulse/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func quietPrefs(start, end string) *entity.NotificationPreferences {
	prefs := entity.DefaultPreferences("user-1")
	prefs.QuietHoursEnabled = true
	prefs.QuietHoursStart = start
	prefs.QuietHoursEnd = end

	return prefs
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestGateAllows_QuietHoursSpanningMidnight(t *testing.T) {
	prefs := quietPrefs("22:00", "08:00")

	assert.False(t, gateAllows(prefs, 0, at(23, 0)), "23:00 is inside the window")
	assert.False(t, gateAllows(prefs, 0, at(7, 0)), "07:00 is inside the window")
	assert.False(t, gateAllows(prefs, 0, at(22, 0)), "start is inclusive")
	assert.True(t, gateAllows(prefs, 0, at(8, 0)), "end is exclusive")
	assert.True(t, gateAllows(prefs, 0, at(9, 0)))
	assert.True(t, gateAllows(prefs, 0, at(21, 59)))
}

func TestGateAllows_QuietHoursSameDay(t *testing.T) {
	prefs := quietPrefs("12:00", "14:00")

	assert.False(t, gateAllows(prefs, 0, at(13, 0)))
	assert.True(t, gateAllows(prefs, 0, at(11, 59)))
	assert.True(t, gateAllows(prefs, 0, at(14, 0)))
}

func TestGateAllows_QuietHoursDisabled(t *testing.T) {
	prefs := entity.DefaultPreferences("user-1")

	assert.True(t, gateAllows(prefs, 0, at(23, 30)), "disabled window never blocks")
}

func TestGateAllows_DailyCap(t *testing.T) {
	prefs := entity.DefaultPreferences("user-1")
	prefs.MaxDaily = 2

	assert.True(t, gateAllows(prefs, 1, at(12, 0)))
	assert.False(t, gateAllows(prefs, 2, at(12, 0)))
	assert.False(t, gateAllows(prefs, 3, at(12, 0)))
}

func TestNextAllowedTime_QuietHoursEndToday(t *testing.T) {
	prefs := quietPrefs("22:00", "08:00")

	next := nextAllowedTime(prefs, at(6, 30))
	assert.Equal(t, at(8, 0), next)
}

func TestNextAllowedTime_QuietHoursEndTomorrow(t *testing.T) {
	prefs := quietPrefs("22:00", "08:00")

	next := nextAllowedTime(prefs, at(23, 15))
	assert.Equal(t, at(8, 0).AddDate(0, 0, 1), next)
}

func TestNextAllowedTime_CappedFallsToNextHour(t *testing.T) {
	prefs := entity.DefaultPreferences("user-1")

	next := nextAllowedTime(prefs, at(12, 42))
	assert.Equal(t, at(13, 0), next)
}
