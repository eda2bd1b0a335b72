package event

import (
	"strings"
	"time"
)

// Event represents a single public event extracted from structured-data
// markup. Records are immutable once built: the filters and the deduplicator
// produce new slices and never modify an Event in place.
type Event struct {
	Title   string `json:"title"`
	Start   string `json:"start,omitempty"` // raw as found on the page; parsed lazily
	End     string `json:"end,omitempty"`
	Venue   string `json:"venue,omitempty"`
	Address string `json:"address,omitempty"`
	Price   string `json:"price,omitempty"`

	// URL is the detail page if known, otherwise the page the event was found on.
	URL    string `json:"url"`
	Source string `json:"source,omitempty"` // host of URL

	// Lat/Lon are either both set or both nil.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	// OriginPage is the seed or listing page that yielded this record.
	// Provenance only, never part of the identity key.
	OriginPage string `json:"origin_page"`
}

// HasCoordinates reports whether the event carries a usable geo position.
func (e *Event) HasCoordinates() bool {
	return e.Lat != nil && e.Lon != nil
}

// DedupKey returns the composite identity key used by the deduplicator:
// the lowercased, trimmed title plus the date portion of the parsed start
// time (empty if the start cannot be parsed). Two events with the same
// title on the same day are treated as the same event regardless of time.
func (e *Event) DedupKey() string {
	key := strings.ToLower(strings.TrimSpace(e.Title))
	if start, ok := ParseStart(e.Start, nil); ok {
		key += "|" + start.Format("2006-01-02")
	} else {
		key += "|"
	}
	return key
}

// Completeness counts the populated optional fields. The deduplicator keeps
// the colliding event with the highest count.
func (e *Event) Completeness() int {
	score := 0
	for _, s := range []string{e.Venue, e.Address, e.Price, e.URL, e.Source, e.End} {
		if s != "" {
			score++
		}
	}
	if e.Lat != nil {
		score++
	}
	if e.Lon != nil {
		score++
	}
	return score
}

// StartTime parses the event's raw start value in the given location.
// ok is false when the value is empty or unparsable.
func (e *Event) StartTime(loc *time.Location) (t time.Time, ok bool) {
	return ParseStart(e.Start, loc)
}
