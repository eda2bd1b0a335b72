package storage

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/charliewiggs/den/internal/event"
)

// Area mirrors the configured area in the report envelope.
type Area struct {
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Timezone     string `json:"timezone"`
}

// DateWindow records the local window the crawl covered.
type DateWindow struct {
	Start string `json:"start_local_iso"`
	End   string `json:"end_local_iso"`
}

// Report is the envelope written for each crawl run.
type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt string         `json:"generated_at"`
	Area        Area           `json:"area"`
	DateWindow  DateWindow     `json:"date_window"`
	Sources     []string       `json:"sources"`
	Events      []*event.Event `json:"events"`
	Digest      string         `json:"digest,omitempty"`
}

// NewReport assembles a report with a fresh run ID.
func NewReport(area Area, window DateWindow, sources []string, events []*event.Event) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Area:        area,
		DateWindow:  window,
		Sources:     sources,
		Events:      events,
	}
}

// Filename returns the report's file name:
// events_<neighborhood>-<city>-<state>_<YYYYMMDD_HHMM>.json
func (r *Report) Filename(now time.Time) string {
	slug := strings.Trim(strings.Join([]string{
		slugify(r.Area.Neighborhood),
		slugify(r.Area.City),
		slugify(r.Area.State),
	}, "-"), "-")
	return fmt.Sprintf("events_%s_%s.json", slug, now.Format("20060102_1504"))
}

// Encode serializes the report as indented JSON, gzip-compressed when
// compress is set.
func (r *Report) Encode(compress bool) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	if !compress {
		return data, nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("compressing report: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compressing report: %w", err)
	}
	return buf.Bytes(), nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
