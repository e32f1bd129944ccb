package impl

import (
	"strconv"
	"strings"
	"time"

	"pulse/internal/domain/entity"
)

// gateAllows decides whether now is an allowed delivery moment for a
// user: outside quiet hours and under the daily cap. Pure policy, no
// side effects.
func gateAllows(prefs *entity.NotificationPreferences, sentToday int, now time.Time) bool {
	if prefs.InQuietHours(now) {
		return false
	}

	return sentToday < prefs.MaxDaily
}

// nextAllowedTime suggests when a denied entry should be retried: the
// end of the quiet window when quiet hours block delivery, otherwise the
// top of the next hour. A pure suggestion; the caller reschedules.
func nextAllowedTime(prefs *entity.NotificationPreferences, now time.Time) time.Time {
	if prefs.InQuietHours(now) {
		hour, minute, _ := parseClock(prefs.QuietHoursEnd)
		end := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !end.After(now) {
			end = end.AddDate(0, 0, 1)
		}

		return end
	}

	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location()).Add(time.Hour)
}

// parseClock parses an HH:MM string, falling back to midnight on
// malformed input.
func parseClock(value string) (hour, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}
