package entity

import (
	"fmt"
	"time"
)

// Default delivery-policy values applied when a user has no stored
// preferences.
const (
	DefaultQuietHoursStart    = "22:00"
	DefaultQuietHoursEnd      = "08:00"
	DefaultMaxDailyDeliveries = 10
	DefaultDeviceClass        = "mobile"
)

// NotificationPreferences is the per-user delivery policy consumed by the
// delivery gate and the experiment audience filter.
type NotificationPreferences struct {
	UserID            string   `json:"userId"`
	QuietHoursEnabled bool     `json:"quietHoursEnabled"`
	QuietHoursStart   string   `json:"quietHoursStart"` // HH:MM, inclusive.
	QuietHoursEnd     string   `json:"quietHoursEnd"`   // HH:MM, exclusive.
	MaxDaily          int      `json:"maxDaily"`        // Daily delivery cap.
	DeviceClass       string   `json:"deviceClass"`     // mobile, tablet, desktop, ...
	Timezone          string   `json:"timezone"`        // IANA timezone identifier.
	Segments          []string `json:"segments,omitempty"`
}

// DefaultPreferences returns the policy used for users without stored
// preferences: quiet hours disabled, ten deliveries per day.
func DefaultPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:          userID,
		QuietHoursStart: DefaultQuietHoursStart,
		QuietHoursEnd:   DefaultQuietHoursEnd,
		MaxDaily:        DefaultMaxDailyDeliveries,
		DeviceClass:     DefaultDeviceClass,
	}
}

// InQuietHours reports whether the instant falls inside the configured
// quiet window. The window is [start, end) on the HH:MM clock and may
// span midnight: start > end means the blocked interval wraps across
// 24:00, e.g. 22:00-08:00 blocks late night and early morning.
func (p *NotificationPreferences) InQuietHours(now time.Time) bool {
	if !p.QuietHoursEnabled {
		return false
	}

	current := fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute())
	if p.QuietHoursStart <= p.QuietHoursEnd {
		return current >= p.QuietHoursStart && current < p.QuietHoursEnd
	}

	return current >= p.QuietHoursStart || current < p.QuietHoursEnd
}
