package event

import "testing"

func TestDedupKey(t *testing.T) {
	tests := []struct {
		name string
		a    Event
		b    Event
		same bool
	}{
		{
			name: "same title same day different times collide",
			a:    Event{Title: "Beach Cleanup", Start: "2025-09-10T09:00"},
			b:    Event{Title: "beach cleanup ", Start: "2025-09-10T09:05"},
			same: true,
		},
		{
			name: "same title different day",
			a:    Event{Title: "Beach Cleanup", Start: "2025-09-10T09:00"},
			b:    Event{Title: "Beach Cleanup", Start: "2025-09-11T09:00"},
			same: false,
		},
		{
			name: "unparsable starts share the empty date portion",
			a:    Event{Title: "Trivia Night", Start: "weekly"},
			b:    Event{Title: "Trivia Night"},
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DedupKey() == tt.b.DedupKey()
			if got != tt.same {
				t.Errorf("DedupKey collision = %v, want %v (%q vs %q)", got, tt.same, tt.a.DedupKey(), tt.b.DedupKey())
			}
		})
	}
}

func TestCompleteness(t *testing.T) {
	lat, lon := 32.79, -117.25

	empty := Event{Title: "A"}
	if got := empty.Completeness(); got != 0 {
		t.Errorf("empty event completeness = %d, want 0", got)
	}

	full := Event{
		Title:   "A",
		Venue:   "Pier",
		Address: "123 Ocean Blvd",
		Price:   "USD 10",
		URL:     "https://example.com/a",
		Source:  "example.com",
		End:     "2025-09-10T12:00",
		Lat:     &lat,
		Lon:     &lon,
	}
	if got := full.Completeness(); got != 8 {
		t.Errorf("full event completeness = %d, want 8", got)
	}

	if !full.HasCoordinates() {
		t.Error("expected HasCoordinates to be true")
	}
	if empty.HasCoordinates() {
		t.Error("expected HasCoordinates to be false")
	}
}
