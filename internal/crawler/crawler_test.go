package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charliewiggs/den/internal/fetch"
	"github.com/charliewiggs/den/internal/filter"
)

// stubFetcher serves canned pages and records fetch order. Safe for
// concurrent crawls.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	page, ok := f.pages[url]
	f.mu.Unlock()
	if !ok {
		return "", errors.New("connection refused")
	}
	return page, nil
}

func (f *stubFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func ldPage(blocks ...string) string {
	page := "<html><head>"
	for _, b := range blocks {
		page += `<script type="application/ld+json">` + b + `</script>`
	}
	return page + "</head><body></body></html>"
}

func TestCrawlEmptySeeds(t *testing.T) {
	c := New(&stubFetcher{}, Options{})
	if _, err := c.Crawl(context.Background(), nil); err == nil {
		t.Fatal("expected an error for zero seeds")
	}
}

func TestCrawlInlineEvents(t *testing.T) {
	seed := "https://a.example.com/events"
	f := &stubFetcher{pages: map[string]string{
		seed: ldPage(`{"@type":"Event","name":"Beach Cleanup","startDate":"2025-09-10T09:00"}`),
	}}

	c := New(f, Options{MaxFollowPerSeed: 5})
	res, err := c.Crawl(context.Background(), []string{seed})
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	evt := res.Events[0]
	if evt.Title != "Beach Cleanup" || evt.OriginPage != seed || evt.URL != seed {
		t.Errorf("event = %+v", evt)
	}
	if res.Seeds[seed] != PageExtracted {
		t.Errorf("seed state = %v, want extracted", res.Seeds[seed])
	}
}

func TestCrawlFollowsDetailLinksOneLevel(t *testing.T) {
	seed := "https://a.example.com/events"
	detail := "https://a.example.com/events/cleanup"

	f := &stubFetcher{pages: map[string]string{
		seed: ldPage(`{"@type":"ItemList","itemListElement":[{"url":"/events/cleanup"}]}`),
		// The detail page has its own ItemList, which must NOT be followed.
		detail: ldPage(
			`{"@type":"Event","name":"Beach Cleanup","startDate":"2025-09-10T09:05"}`,
			`{"@type":"ItemList","itemListElement":[{"url":"/events/another"}]}`,
		),
	}}

	c := New(f, Options{MaxFollowPerSeed: 5})
	res, err := c.Crawl(context.Background(), []string{seed})
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	evt := res.Events[0]
	if evt.URL != detail {
		t.Errorf("event url = %q, want the detail page", evt.URL)
	}
	if evt.OriginPage != seed {
		t.Errorf("origin page = %q, want the seed", evt.OriginPage)
	}

	for _, url := range f.fetched {
		if url == "https://a.example.com/events/another" {
			t.Error("detail pages must not be mined for further links")
		}
	}
}

func TestCrawlSkipsUnreachableSeeds(t *testing.T) {
	good := "https://a.example.com/events"
	bad := "https://down.example.com/events"

	f := &stubFetcher{pages: map[string]string{
		good: ldPage(`{"@type":"Event","name":"Beach Cleanup","startDate":"2025-09-10T09:00"}`),
	}}

	c := New(f, Options{})
	res, err := c.Crawl(context.Background(), []string{bad, good})
	if err != nil {
		t.Fatalf("a dead seed must not fail the crawl: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	if res.Seeds[bad] != PageSkipped {
		t.Errorf("dead seed state = %v, want skipped", res.Seeds[bad])
	}
	if res.Seeds[good] != PageExtracted {
		t.Errorf("good seed state = %v, want extracted", res.Seeds[good])
	}
}

func TestCrawlStopsAtEventCap(t *testing.T) {
	pages := make(map[string]string)
	seeds := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://s%d.example.com/", i)
		seeds = append(seeds, url)
		pages[url] = ldPage(fmt.Sprintf(`{"@type":"Event","name":"Event %d","startDate":"2025-09-10"}`, i))
	}

	f := &stubFetcher{pages: pages}
	c := New(f, Options{MaxEvents: 2})
	res, err := c.Crawl(context.Background(), seeds)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(res.Events) != 2 {
		t.Errorf("got %d events, want 2", len(res.Events))
	}
	if len(f.fetched) != 2 {
		t.Errorf("fetched %d pages, want 2 (early termination)", len(f.fetched))
	}
	if res.Seeds[seeds[4]] != PagePending {
		t.Errorf("unprocessed seed state = %v, want pending", res.Seeds[seeds[4]])
	}
}

func TestCrawlSharedLinkSetAcrossSeeds(t *testing.T) {
	seedA := "https://a.example.com/events"
	seedB := "https://b.example.com/events"
	detail := "https://venue.example.com/show"

	list := ldPage(fmt.Sprintf(`{"@type":"ItemList","itemListElement":[{"url":%q}]}`, detail))
	f := &stubFetcher{pages: map[string]string{
		seedA:  list,
		seedB:  list,
		detail: ldPage(`{"@type":"Event","name":"Show","startDate":"2025-09-10"}`),
	}}

	c := New(f, Options{MaxFollowPerSeed: 5})
	res, err := c.Crawl(context.Background(), []string{seedA, seedB})
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	detailFetches := 0
	for _, url := range f.fetched {
		if url == detail {
			detailFetches++
		}
	}
	if detailFetches != 1 {
		t.Errorf("detail page fetched %d times, want 1", detailFetches)
	}
	if len(res.Events) != 1 {
		t.Errorf("got %d events, want 1", len(res.Events))
	}
}

func TestCrawlCancellation(t *testing.T) {
	seed := "https://a.example.com/events"
	f := &stubFetcher{pages: map[string]string{
		seed: ldPage(`{"@type":"Event","name":"A"}`),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(f, Options{})
	if _, err := c.Crawl(ctx, []string{seed}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(f.fetched) != 0 {
		t.Errorf("fetched %d pages after cancellation, want 0", len(f.fetched))
	}
}

func TestCrawlConcurrent(t *testing.T) {
	pages := make(map[string]string)
	seeds := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		url := fmt.Sprintf("https://s%d.example.com/", i)
		seeds = append(seeds, url)
		pages[url] = ldPage(fmt.Sprintf(`{"@type":"Event","name":"Event %d","startDate":"2025-09-10"}`, i))
	}

	f := &stubFetcher{pages: pages}
	c := New(f, Options{Concurrency: 3})
	res, err := c.Crawl(context.Background(), seeds)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(res.Events) != 6 {
		t.Errorf("got %d events, want 6", len(res.Events))
	}
	if f.fetchCount() != 6 {
		t.Errorf("fetched %d pages, want 6", f.fetchCount())
	}
	for _, seed := range seeds {
		if res.Seeds[seed] != PageExtracted {
			t.Errorf("seed %s state = %v, want extracted", seed, res.Seeds[seed])
		}
	}
}

func TestCrawlConcurrentCapTruncation(t *testing.T) {
	pages := make(map[string]string)
	seeds := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		url := fmt.Sprintf("https://s%d.example.com/", i)
		seeds = append(seeds, url)
		pages[url] = ldPage(fmt.Sprintf(`{"@type":"Event","name":"Event %d","startDate":"2025-09-10"}`, i))
	}

	f := &stubFetcher{pages: pages}
	c := New(f, Options{MaxEvents: 3, Concurrency: 4})
	res, err := c.Crawl(context.Background(), seeds)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	// Concurrent mode may overshoot the cap before workers notice; the
	// pipeline truncates later. It must still stop handing out new seeds.
	if len(res.Events) < 3 {
		t.Errorf("got %d events, want at least 3", len(res.Events))
	}
	if f.fetchCount() == len(seeds) {
		t.Error("cap did not stop the crawl from processing every seed")
	}
}

func TestCrawlConcurrentCancellation(t *testing.T) {
	seed := "https://a.example.com/events"
	f := &stubFetcher{pages: map[string]string{
		seed: ldPage(`{"@type":"Event","name":"A"}`),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(f, Options{Concurrency: 2})
	if _, err := c.Crawl(ctx, []string{seed}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestCrawlEndToEnd runs the crawl against real HTTP servers and the full
// reduction: seed A lists one inline event plus a richer duplicate behind a
// detail link, seed B is unreachable. The pipeline must yield exactly the
// richer "Beach Cleanup".
func TestCrawlEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ldPage(
			`{"@type":"Event","name":"Beach Cleanup","startDate":"2025-09-10T09:00"}`,
			`{"@type":"ItemList","itemListElement":[{"url":"/events/cleanup"}]}`,
		))
	})
	mux.HandleFunc("/events/cleanup", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ldPage(`{
			"@type": "Event",
			"name": "Beach Cleanup",
			"startDate": "2025-09-10T09:05",
			"location": {
				"name": "Crystal Pier",
				"address": {"streetAddress": "4500 Ocean Blvd", "addressLocality": "San Diego", "addressRegion": "CA"}
			}
		}`))
	})

	deadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	deadSrv.Close() // make it actually unreachable

	c := New(fetch.New(5*time.Second), Options{MaxFollowPerSeed: 3})
	res, err := c.Crawl(context.Background(), []string{srv.URL + "/events", deadSrv.URL + "/events"})
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("got %d raw events, want 2", len(res.Events))
	}

	now := time.Date(2025, time.September, 9, 8, 0, 0, 0, time.UTC)
	p := &filter.Pipeline{
		Geofence: &filter.Geofence{Lat: 32.7941, Lon: -117.2544, RadiusMiles: 5, Neighborhood: "Pacific Beach", City: "San Diego"},
		Window:   &filter.TimeWindow{DaysAhead: 14, Now: func() time.Time { return now }},
	}
	final := p.Run(res.Events)

	if len(final) != 1 {
		t.Fatalf("got %d events after reduction, want 1: %+v", len(final), final)
	}
	evt := final[0]
	if evt.Title != "Beach Cleanup" {
		t.Errorf("title = %q", evt.Title)
	}
	if evt.Venue != "Crystal Pier" || evt.Address == "" {
		t.Errorf("expected the richer variant to survive, got %+v", evt)
	}
}
