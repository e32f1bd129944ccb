package entity

import (
	"time"

	"github.com/google/uuid"
)

// ABTestStatus is the lifecycle state of an experiment.
type ABTestStatus string

// Known experiment states.
const (
	TestStatusDraft     ABTestStatus = "draft"
	TestStatusRunning   ABTestStatus = "running"
	TestStatusPaused    ABTestStatus = "paused"
	TestStatusCompleted ABTestStatus = "completed"
)

// MetricName identifies the rate an experiment is optimized for.
type MetricName string

// Known experiment metrics.
const (
	MetricOpenRate       MetricName = "open_rate"
	MetricClickRate      MetricName = "click_rate"
	MetricConversionRate MetricName = "conversion_rate"
	MetricEngagement     MetricName = "engagement"
)

// MinimumSampleSizeFloor is the smallest allowed per-test sample size.
const MinimumSampleSizeFloor = 30

// ContentOverride is a partial notification-content override applied by a
// variant. Empty fields leave the base content untouched.
type ContentOverride struct {
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body,omitempty"`
	ImageURL string            `json:"imageUrl,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// ABTestVariant is one treatment arm of an experiment, control included.
type ABTestVariant struct {
	ID        string          `json:"id"`        // Stable variant identifier within the test.
	Name      string          `json:"name"`      // Human readable label.
	Weight    float64         `json:"weight"`    // Traffic share in percent, 0-100.
	IsControl bool            `json:"isControl"` // Exactly one variant per test is the control.
	Override  ContentOverride `json:"override"`  // Partial content override for this arm.
}

// TargetAudience filters which users a test applies to. Every present
// filter must match (AND combination); an absent filter is a no-op.
type TargetAudience struct {
	MinEngagementScore *float64 `json:"minEngagementScore,omitempty"`
	MaxEngagementScore *float64 `json:"maxEngagementScore,omitempty"`
	DeviceClasses      []string `json:"deviceClasses,omitempty"`
	Timezones          []string `json:"timezones,omitempty"`
	Segments           []string `json:"segments,omitempty"`
}

// ABTest is an experiment definition over notification content.
type ABTest struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Status            ABTestStatus    `json:"status"`
	StartAt           time.Time       `json:"startAt"`
	EndAt             *time.Time      `json:"endAt,omitempty"`
	Audience          TargetAudience  `json:"audience"`
	Variants          []ABTestVariant `json:"variants"`          // Definition order matters for bucket assignment.
	PrimaryMetric     MetricName      `json:"primaryMetric"`     // The rate the test optimizes for.
	SecondaryMetrics  []MetricName    `json:"secondaryMetrics,omitempty"`
	MinimumSampleSize int             `json:"minimumSampleSize"` // Per spec at least MinimumSampleSizeFloor.
	ConfidenceLevel   int             `json:"confidenceLevel"`   // 90, 95 or 99.
	CreatedAt         time.Time       `json:"createdAt"`
}

// ControlVariant returns the control arm, or nil when the definition is
// malformed.
func (t *ABTest) ControlVariant() *ABTestVariant {
	for i := range t.Variants {
		if t.Variants[i].IsControl {
			return &t.Variants[i]
		}
	}

	return nil
}

// ABTestResult is one row per (test, user) assignment and delivery.
// Interaction callbacks mutate it; rows older than the retention horizon
// are purged.
type ABTestResult struct {
	TestID          uuid.UUID  `json:"testId"`
	VariantID       string     `json:"variantId"`
	UserID          string     `json:"userId"`
	NotificationID  uuid.UUID  `json:"notificationId"`
	SentAt          time.Time  `json:"sentAt"`
	Opened          bool       `json:"opened"`
	OpenedAt        *time.Time `json:"openedAt,omitempty"`
	Clicked         bool       `json:"clicked"`
	ClickedAt       *time.Time `json:"clickedAt,omitempty"`
	Converted       bool       `json:"converted"`
	ConvertedAt     *time.Time `json:"convertedAt,omitempty"`
	ResponseMinutes int        `json:"responseMinutes"`
}

// VariantReport is the per-arm slice of an experiment analysis.
type VariantReport struct {
	VariantID       string  `json:"variantId"`
	Name            string  `json:"name"`
	IsControl       bool    `json:"isControl"`
	Participants    int     `json:"participants"`
	OpenRate        float64 `json:"openRate"`        // 0-1 fraction.
	ClickRate       float64 `json:"clickRate"`       // 0-1 fraction.
	ConversionRate  float64 `json:"conversionRate"`  // 0-1 fraction.
	EngagementScore float64 `json:"engagementScore"` // 0.4*open + 0.3*click + 0.3*conversion.
}

// ABTestReport is the comparative analysis of a test.
type ABTestReport struct {
	TestID          uuid.UUID       `json:"testId"`
	Status          ABTestStatus    `json:"status"`
	PrimaryMetric   MetricName      `json:"primaryMetric"`
	Variants        []VariantReport `json:"variants"`
	Significant     bool            `json:"significant"`           // Heuristic, not a rigorous hypothesis test.
	WinnerVariantID string          `json:"winnerVariantId,omitempty"` // Set only when the winner differs from control.
	Improvement     float64         `json:"improvement"`           // Relative % gain of the winner over control.
	Recommendations []string        `json:"recommendations"`       // Informational free text.
}
