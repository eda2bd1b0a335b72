package cli

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/charliewiggs/den/internal/crawler"
	"github.com/charliewiggs/den/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Area        string                       `json:"area"`
	WindowStart time.Time                    `json:"window_start"`
	WindowEnd   time.Time                    `json:"window_end"`
	Events      []*event.Event               `json:"events"`
	EventCount  int                          `json:"event_count"`
	Seeds       map[string]crawler.PageState `json:"-"`
	Digest      string                       `json:"digest,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fmt.Fprintf(w, "Upcoming events near %s (%s to %s)\n",
		result.Area,
		result.WindowStart.Format("Jan 2"),
		result.WindowEnd.Format("Jan 2"))

	if result.EventCount == 0 {
		fmt.Fprintln(w, "\nNo events found.")
	} else if result.Digest != "" {
		fmt.Fprintf(w, "\n%s\n", result.Digest)
	} else {
		fmt.Fprintln(w)
		for i, evt := range result.Events {
			fmt.Fprintf(w, "%d. %s\n", i+1, eventLine(evt))
		}
	}

	if verbose {
		fmt.Fprintln(w, "\nSeed pages:")
		for _, seed := range sortedSeeds(result.Seeds) {
			fmt.Fprintf(w, "  %-10s %s\n", result.Seeds[seed], seed)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)
	return nil
}

func eventLine(evt *event.Event) string {
	when := evt.Start
	if when == "" {
		when = "TBD"
	}
	where := evt.Venue
	if where == "" {
		where = evt.Address
	}
	if where == "" {
		where = "TBD"
	}
	return fmt.Sprintf("%s | %s | %s", evt.Title, when, where)
}
