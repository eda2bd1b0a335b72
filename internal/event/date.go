package event

import (
	"regexp"
	"strings"
	"time"
)

// Layouts carrying their own zone offset. Tried first; the parsed instant is
// kept as-is.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
}

// Layouts with no zone information. Values are treated as UTC and then
// converted to the configured location if one is set.
var nakedLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Bare-date layouts resolve to midnight on that date.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
}

// looseDatePattern pulls a leading ISO-style date (and optional time) out of
// values with trailing noise, e.g. "2026-03-14T19:00:00.000-07:00 doors 6pm".
var looseDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})(?:[T ](\d{2}:\d{2}))?`)

// ParseStart leniently parses a raw start value. Strict timestamp layouts are
// tried first, then bare dates at midnight, then a permissive scan for
// anything date-shaped inside the string. Zoneless values are read as UTC
// and converted to loc when loc is non-nil. ok is false only when nothing
// date-like could be recovered.
func ParseStart(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return inLocation(t, loc), true
		}
	}

	for _, layout := range nakedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return inLocation(t, loc), true
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return inLocation(t, loc), true
		}
	}

	// Last resort: find an embedded date, with or without a time of day.
	if m := looseDatePattern.FindStringSubmatch(s); m != nil {
		layout, value := "2006-01-02", m[1]
		if m[2] != "" {
			layout, value = "2006-01-02 15:04", m[1]+" "+m[2]
		}
		if t, err := time.Parse(layout, value); err == nil {
			return inLocation(t, loc), true
		}
	}

	return time.Time{}, false
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
