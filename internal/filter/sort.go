package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/charliewiggs/den/internal/event"
)

// SortChronological returns the events in ascending start-time order.
// Events whose start cannot be parsed sort after every dated event, ordered
// alphabetically by title among themselves. The sort is stable and the
// input slice is never modified.
func SortChronological(events []*event.Event, loc *time.Location) []*event.Event {
	out := make([]*event.Event, len(events))
	copy(out, events)

	sort.SliceStable(out, func(i, j int) bool {
		return lessChronological(out[i], out[j], loc)
	})

	return out
}

func lessChronological(a, b *event.Event, loc *time.Location) bool {
	ta, aOK := a.StartTime(loc)
	tb, bOK := b.StartTime(loc)

	if aOK != bOK {
		// Dated events come first; unknown start times sort last.
		return aOK
	}
	if aOK && !ta.Equal(tb) {
		return ta.Before(tb)
	}
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}
