package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimeOfDayBucket is a coarse delivery-time bucket used in rollups.
type TimeOfDayBucket string

// Known time-of-day buckets.
const (
	BucketMorning   TimeOfDayBucket = "morning"   // 05:00-11:59
	BucketAfternoon TimeOfDayBucket = "afternoon" // 12:00-16:59
	BucketEvening   TimeOfDayBucket = "evening"   // 17:00-21:59
	BucketNight     TimeOfDayBucket = "night"     // everything else
)

// BucketForHour maps an hour-of-day to its rollup bucket.
func BucketForHour(hour int) TimeOfDayBucket {
	switch {
	case hour >= 5 && hour <= 11:
		return BucketMorning
	case hour >= 12 && hour <= 16:
		return BucketAfternoon
	case hour >= 17 && hour <= 21:
		return BucketEvening
	default:
		return BucketNight
	}
}

// InteractionKind is the kind of user interaction reported back by the UI.
type InteractionKind string

// Known interaction kinds.
const (
	InteractionOpened    InteractionKind = "opened"
	InteractionClicked   InteractionKind = "clicked"
	InteractionDismissed InteractionKind = "dismissed"
	InteractionConverted InteractionKind = "converted"
)

// AnalyticsRecord tracks one delivered notification instance. It is
// created at send time and mutated at most once per interaction kind.
// Opened is forced true (with OpenedAt backfilled) the first time Clicked
// becomes true, even when no open was separately reported.
type AnalyticsRecord struct {
	ID              uuid.UUID        `json:"id"`                    // Unique identifier of the record.
	UserID          string           `json:"userId"`                // Receiving user.
	NotificationID  uuid.UUID        `json:"notificationId"`        // Delivered scheduling entry.
	Type            NotificationType `json:"type"`                  // Notification kind.
	Category        string           `json:"category"`              // Notification category.
	SentAt          time.Time        `json:"sentAt"`                // Delivery timestamp.
	Opened          bool             `json:"opened"`                // Whether the user opened the notification.
	OpenedAt        *time.Time       `json:"openedAt,omitempty"`    // First-open timestamp.
	Clicked         bool             `json:"clicked"`               // Whether the user clicked through.
	ClickedAt       *time.Time       `json:"clickedAt,omitempty"`   // Click timestamp.
	Dismissed       bool             `json:"dismissed"`             // Whether the user dismissed it.
	DismissedAt     *time.Time       `json:"dismissedAt,omitempty"` // Dismissal timestamp.
	ResponseMinutes int              `json:"responseMinutes"`       // Minutes from send to first interaction.
	DeviceClass     string           `json:"deviceClass"`           // Receiving device class (mobile, tablet, ...).
	TimeOfDay       TimeOfDayBucket  `json:"timeOfDay"`             // Delivery-time bucket.
	Weekday         time.Weekday     `json:"weekday"`               // Delivery weekday.
}

// EngagementSummary is the read-only rollup served by analytics queries.
type EngagementSummary struct {
	UserID             string                  `json:"userId"`
	Window             string                  `json:"window"` // day, week or month.
	Sent               int                     `json:"sent"`
	Opened             int                     `json:"opened"`
	Clicked            int                     `json:"clicked"`
	Dismissed          int                     `json:"dismissed"`
	OpenRate           float64                 `json:"openRate"`           // Percentage, 0 when nothing was sent.
	ClickRate          float64                 `json:"clickRate"`          // Percentage, 0 when nothing was sent.
	DismissRate        float64                 `json:"dismissRate"`        // Percentage, 0 when nothing was sent.
	AvgResponseMinutes float64                 `json:"avgResponseMinutes"` // Mean over opened records, 0 when none.
	ByCategory         map[string]int          `json:"byCategory"`
	ByTimeOfDay        map[TimeOfDayBucket]int `json:"byTimeOfDay"`
}
