package filter

import (
	"time"

	"github.com/charliewiggs/den/internal/event"
)

// Pipeline applies the full reduction in a fixed order: geofence, time
// window, dedupe, chronological sort, then truncation at MaxEvents. Running
// it twice over its own output yields the same list.
type Pipeline struct {
	Geofence  *Geofence
	Window    *TimeWindow
	MaxEvents int
	Location  *time.Location
}

// Run reduces the raw crawl output to the final ordered list. The input
// slice is never modified.
func (p *Pipeline) Run(events []*event.Event) []*event.Event {
	out := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if p.Geofence != nil && !p.Geofence.Accept(evt) {
			continue
		}
		if p.Window != nil && !p.Window.Accept(evt) {
			continue
		}
		out = append(out, evt)
	}

	out = Dedupe(out)
	out = SortChronological(out, p.Location)

	if p.MaxEvents > 0 && len(out) > p.MaxEvents {
		out = out[:p.MaxEvents]
	}
	return out
}
