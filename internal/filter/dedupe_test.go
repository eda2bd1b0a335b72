package filter

import (
	"testing"

	"github.com/charliewiggs/den/internal/event"
)

func TestDedupeKeepsMostComplete(t *testing.T) {
	sparse := &event.Event{Title: "Beach Cleanup", Start: "2025-09-10T09:00", URL: "https://a.example.com/1"}
	rich := &event.Event{
		Title:   "Beach Cleanup",
		Start:   "2025-09-10T09:05",
		Venue:   "Crystal Pier",
		Address: "4500 Ocean Blvd, San Diego",
		URL:     "https://b.example.com/2",
		Source:  "b.example.com",
	}

	got := Dedupe([]*event.Event{sparse, rich})
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0] != rich {
		t.Errorf("expected the richer variant to win, got %+v", got[0])
	}
}

func TestDedupeTieKeepsFirstSeen(t *testing.T) {
	first := &event.Event{Title: "Trivia Night", Start: "2025-09-10", URL: "https://a.example.com"}
	second := &event.Event{Title: "Trivia Night", Start: "2025-09-10", URL: "https://b.example.com"}

	got := Dedupe([]*event.Event{first, second})
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0] != first {
		t.Error("tie should keep the first-seen event")
	}
}

func TestDedupeDistinctDaysSurvive(t *testing.T) {
	mon := &event.Event{Title: "Trivia Night", Start: "2025-09-08"}
	tue := &event.Event{Title: "Trivia Night", Start: "2025-09-09"}

	got := Dedupe([]*event.Event{mon, tue})
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
}

func TestDedupePreservesOrderAndInput(t *testing.T) {
	in := []*event.Event{
		{Title: "A", Start: "2025-09-08"},
		{Title: "B", Start: "2025-09-08"},
		{Title: "A", Start: "2025-09-08", Venue: "somewhere"},
		{Title: "C", Start: "2025-09-08"},
	}

	got := Dedupe(in)
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	// The winner for "A" replaces the first-seen slot, keeping position.
	if got[0].Title != "A" || got[0].Venue != "somewhere" {
		t.Errorf("slot 0 = %+v", got[0])
	}
	if got[1].Title != "B" || got[2].Title != "C" {
		t.Errorf("order not preserved: %v, %v", got[1].Title, got[2].Title)
	}
	if len(in) != 4 {
		t.Error("input slice modified")
	}
}
