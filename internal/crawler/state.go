package crawler

import (
	"sync"

	"github.com/charliewiggs/den/internal/event"
)

// PageState tracks a seed page through the crawl.
type PageState int

const (
	PagePending PageState = iota
	PageFetched
	PageExtracted
	PageSkipped
)

func (s PageState) String() string {
	switch s {
	case PagePending:
		return "pending"
	case PageFetched:
		return "fetched"
	case PageExtracted:
		return "extracted"
	case PageSkipped:
		return "skipped"
	}
	return "unknown"
}

// crawlState is the shared accumulation for one crawl run: the raw event
// list, the set of detail links already claimed, and per-seed states. All
// mutation goes through the mutex so concurrent seed workers never
// interleave appends.
type crawlState struct {
	mu        sync.Mutex
	events    []*event.Event
	seenLinks map[string]bool
	seeds     map[string]PageState
	maxEvents int
}

func newCrawlState(seeds []string, maxEvents int) *crawlState {
	states := make(map[string]PageState, len(seeds))
	for _, seed := range seeds {
		states[seed] = PagePending
	}
	return &crawlState{
		seenLinks: make(map[string]bool),
		seeds:     states,
		maxEvents: maxEvents,
	}
}

func (s *crawlState) setSeedState(url string, state PageState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeds[url] = state
}

// addEvents appends a batch under the lock and reports whether the global
// cap has been reached.
func (s *crawlState) addEvents(batch []*event.Event) (full bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return s.maxEvents > 0 && len(s.events) >= s.maxEvents
}

// full reports whether the global cap has been reached.
func (s *crawlState) full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEvents > 0 && len(s.events) >= s.maxEvents
}

// claimLinks filters out links already discovered anywhere in the crawl and
// marks the rest as claimed, preserving order.
func (s *crawlState) claimLinks(links []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]string, 0, len(links))
	for _, link := range links {
		if s.seenLinks[link] {
			continue
		}
		s.seenLinks[link] = true
		fresh = append(fresh, link)
	}
	return fresh
}

func (s *crawlState) snapshot() ([]*event.Event, map[string]PageState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]*event.Event, len(s.events))
	copy(events, s.events)

	seeds := make(map[string]PageState, len(s.seeds))
	for url, state := range s.seeds {
		seeds[url] = state
	}
	return events, seeds
}
