package filter

import (
	"time"

	"github.com/charliewiggs/den/internal/event"
)

// graceBefore absorbs near-midnight boundary and timezone-rounding effects
// for events that technically started a few hours ago.
const graceBefore = 24 * time.Hour

// TimeWindow accepts events whose start time falls within a trailing grace
// period and a forward horizon of DaysAhead days. Events with no parseable
// start time are always accepted; unknown timing is never grounds for
// exclusion here.
type TimeWindow struct {
	DaysAhead int
	Location  *time.Location // optional; zoneless starts are UTC then shown here

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

// Accept reports whether the event's start falls inside the window.
func (w *TimeWindow) Accept(evt *event.Event) bool {
	start, ok := evt.StartTime(w.Location)
	if !ok {
		return true
	}

	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}

	earliest := now.Add(-graceBefore)
	latest := now.Add(time.Duration(w.DaysAhead) * 24 * time.Hour)

	return !start.Before(earliest) && !start.After(latest)
}
