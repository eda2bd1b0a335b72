package filter

import "github.com/charliewiggs/den/internal/event"

// Dedupe collapses events sharing a composite identity key (lowercased title
// plus start date), keeping the most information-complete variant of each.
// Ties keep the first-seen event, and survivors keep first-seen order. The
// input slice is never modified.
func Dedupe(events []*event.Event) []*event.Event {
	index := make(map[string]int, len(events))
	out := make([]*event.Event, 0, len(events))

	for _, evt := range events {
		key := evt.DedupKey()
		if i, ok := index[key]; ok {
			if evt.Completeness() > out[i].Completeness() {
				out[i] = evt
			}
			continue
		}
		index[key] = len(out)
		out = append(out, evt)
	}

	return out
}
