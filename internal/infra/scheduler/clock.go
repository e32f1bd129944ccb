package scheduler

import (
	"time"

	"pulse/internal/domain/service"
)

// NewSystemClock returns the wall clock used outside of tests.
func NewSystemClock() service.Clock {
	return service.ClockFunc(time.Now)
}
