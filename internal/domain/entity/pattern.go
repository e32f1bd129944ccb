package entity

import (
	"time"
)

const (
	// MaxTrackedActiveHours bounds MostActiveHours to the most recently
	// added hours; the oldest is evicted first.
	MaxTrackedActiveHours = 6

	// DefaultEngagementScore is the starting engagement estimate for a
	// user with no observed interactions.
	DefaultEngagementScore = 0.5
)

// UserActivityPattern is the per-user behavioural model the scheduler
// learns from. It is a cheap online learner: bounded, responsive and not
// statistically rigorous.
type UserActivityPattern struct {
	UserID             string     `json:"userId"`             // Owning user.
	MostActiveHours    []int      `json:"mostActiveHours"`    // Hour-of-day values in insertion order, capacity MaxTrackedActiveHours.
	PreferredTimes     []string   `json:"preferredTimes"`     // Preferred delivery times as HH:MM strings.
	AvgResponseMinutes float64    `json:"avgResponseMinutes"` // Running average of response times.
	EngagementScore    float64    `json:"engagementScore"`    // Learned responsiveness estimate in [0,1].
	Timezone           string     `json:"timezone"`           // IANA timezone identifier.
	LastActiveAt       time.Time  `json:"lastActiveAt"`       // Most recent observed activity.
	WeeklyActivity     [7]float64 `json:"weeklyActivity"`     // Per-weekday accumulators, saturating at 1.0.
}

// NewUserActivityPattern returns the default pattern created lazily on a
// user's first observed activity.
func NewUserActivityPattern(userID string) *UserActivityPattern {
	return &UserActivityPattern{
		UserID:          userID,
		MostActiveHours: []int{},
		PreferredTimes:  []string{"09:00", "19:00"},
		EngagementScore: DefaultEngagementScore,
	}
}

// TrackActiveHour records an hour-of-day as recently active. The set is
// insertion-order bounded, not frequency ranked: a new hour evicts the
// oldest once capacity is reached, and known hours are left untouched.
func (p *UserActivityPattern) TrackActiveHour(hour int) {
	for _, h := range p.MostActiveHours {
		if h == hour {
			return
		}
	}

	p.MostActiveHours = append(p.MostActiveHours, hour)
	if len(p.MostActiveHours) > MaxTrackedActiveHours {
		p.MostActiveHours = p.MostActiveHours[1:]
	}
}

// IsActiveHour reports whether the hour is in the tracked active set.
func (p *UserActivityPattern) IsActiveHour(hour int) bool {
	for _, h := range p.MostActiveHours {
		if h == hour {
			return true
		}
	}

	return false
}
