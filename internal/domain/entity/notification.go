// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the kind of wellness notification.
type NotificationType string

// Known notification types.
const (
	TypeMealReminder     NotificationType = "meal_reminder"
	TypeTrainingReminder NotificationType = "training_reminder"
	TypeMotivational     NotificationType = "motivational"
	TypeAchievement      NotificationType = "achievement"
	TypeWellnessTip      NotificationType = "wellness_tip"
)

// NotificationPriority is the caller-declared urgency of a notification.
type NotificationPriority string

// Known notification priorities.
const (
	PriorityUrgent NotificationPriority = "urgent"
	PriorityHigh   NotificationPriority = "high"
	PriorityNormal NotificationPriority = "normal"
	PriorityLow    NotificationPriority = "low"
)

// RecurrenceFrequency describes how often a recurring notification repeats.
type RecurrenceFrequency string

// Known recurrence frequencies.
const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
)

// NotificationContent is the user-visible payload of a notification.
type NotificationContent struct {
	Title    string               `json:"title"`              // Short headline shown in the notification tray.
	Body     string               `json:"body"`               // Main notification text.
	Type     NotificationType     `json:"type"`               // Notification kind (meal_reminder, motivational, ...).
	Category string               `json:"category"`           // Grouping category (reminders, achievements, wellness, ...).
	Priority NotificationPriority `json:"priority"`           // Caller-declared urgency.
	Tags     []string             `json:"tags,omitempty"`     // Free-form labels used for filtering.
	Data     map[string]string    `json:"data,omitempty"`     // Opaque key/value payload forwarded to the client.
	ImageURL string               `json:"imageUrl,omitempty"` // Optional image attached to the notification.
}

// RecurrencePattern describes when a recurring notification repeats.
type RecurrencePattern struct {
	Frequency RecurrenceFrequency `json:"frequency"`           // daily, weekly or monthly.
	TimeOfDay string              `json:"timeOfDay,omitempty"` // Optional HH:MM clock time for each occurrence.
}

// ScheduledNotification is a notification payload bound to a delivery plan.
// Entries are owned exclusively by the scheduling queue: delivery mutates
// them in place, and a recurring delivery spawns a new sibling entry for
// the next occurrence instead of reusing the original.
type ScheduledNotification struct {
	ID            uuid.UUID           `json:"id"`                   // Unique identifier of the entry.
	UserID        string              `json:"userId"`               // Owning user.
	Content       NotificationContent `json:"content"`              // Notification payload.
	ScheduledAt   time.Time           `json:"scheduledAt"`          // Target delivery time.
	IsRecurring   bool                `json:"isRecurring"`          // Whether delivery spawns a next occurrence.
	Recurrence    *RecurrencePattern  `json:"recurrence,omitempty"` // Recurrence plan, set when IsRecurring.
	PriorityScore float64             `json:"priorityScore"`        // Computed 1-10 score, informational only.
	Sent          bool                `json:"sent"`                 // True once delivered.
	SentAt        *time.Time          `json:"sentAt,omitempty"`     // Delivery timestamp.
	Opened        bool                `json:"opened"`               // True once the user opened it.
	OpenedAt      *time.Time          `json:"openedAt,omitempty"`   // First-open timestamp.
	Attempts      int                 `json:"attempts"`             // Delivery attempts made so far.
	CreatedAt     time.Time           `json:"createdAt"`            // Timestamp of when the entry was created.
}

// NextOccurrence computes the delivery time of the sibling entry spawned
// after a recurring delivery. The sibling keeps the entry's clock time
// unless the pattern carries an explicit TimeOfDay; monthly recurrence
// lands on the same day of the following calendar month.
func (n *ScheduledNotification) NextOccurrence() time.Time {
	if n.Recurrence == nil {
		return n.ScheduledAt.AddDate(0, 0, 1)
	}

	var next time.Time
	switch n.Recurrence.Frequency {
	case FrequencyWeekly:
		next = n.ScheduledAt.AddDate(0, 0, 7)
	case FrequencyMonthly:
		next = n.ScheduledAt.AddDate(0, 1, 0)
	default:
		next = n.ScheduledAt.AddDate(0, 0, 1)
	}

	if tod, err := time.Parse("15:04", n.Recurrence.TimeOfDay); err == nil {
		next = time.Date(next.Year(), next.Month(), next.Day(),
			tod.Hour(), tod.Minute(), 0, 0, next.Location())
	}

	return next
}
