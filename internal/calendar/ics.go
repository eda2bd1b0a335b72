package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charliewiggs/den/internal/event"
)

const defaultDuration = 2 * time.Hour

// GenerateICS renders events as a single iCalendar (.ics) document. Events
// without a parsable start date are skipped since a VEVENT requires DTSTART.
func GenerateICS(events []*event.Event, loc *time.Location) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Den Events//den-events//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatICSTime(time.Now().UTC())
	for _, evt := range events {
		start, ok := event.ParseStart(evt.Start, loc)
		if !ok {
			continue
		}
		writeEvent(&ics, evt, start, loc, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, start time.Time, loc *time.Location, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@den-events\r\n", slugUID(evt, start)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))

	end := start.Add(defaultDuration)
	if parsed, ok := event.ParseStart(evt.End, loc); ok && parsed.After(start) {
		end = parsed
	}
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Title)))

	if where := eventLocation(evt); where != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(where)))
	}
	if desc := eventDescription(evt); desc != "" {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(desc)))
	}
	if evt.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func eventLocation(evt *event.Event) string {
	switch {
	case evt.Venue != "" && evt.Address != "":
		return fmt.Sprintf("%s, %s", evt.Venue, evt.Address)
	case evt.Venue != "":
		return evt.Venue
	default:
		return evt.Address
	}
}

func eventDescription(evt *event.Event) string {
	var parts []string
	if evt.Price != "" {
		parts = append(parts, fmt.Sprintf("Price: %s", evt.Price))
	}
	if evt.Source != "" {
		parts = append(parts, fmt.Sprintf("Source: %s", evt.Source))
	}
	return strings.Join(parts, "\n")
}

// slugUID builds a stable per-event identifier from the dedup key so
// re-running the crawl yields the same UID for the same event.
func slugUID(evt *event.Event, start time.Time) string {
	key := strings.ReplaceAll(evt.DedupKey(), " ", "-")
	key = strings.ReplaceAll(key, "|", "-")
	if key == "" {
		key = start.UTC().Format("20060102T150405Z")
	}
	return key
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
