package testutil

import (
	"time"

	"github.com/zoobzio/clockz"
)

// NewClockAt returns a fake clock reading exactly at, in at's location.
func NewClockAt(at time.Time) *clockz.FakeClock {
	return clockz.NewFakeClockAt(at)
}
