package crawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charliewiggs/den/internal/event"
	"github.com/charliewiggs/den/internal/jsonld"
	"github.com/charliewiggs/den/internal/logger"
)

// Fetcher retrieves the text of a web page. Implementations must honor the
// context and bound their own timeouts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Options configures a crawl run.
type Options struct {
	// MaxEvents stops the crawl early once this many raw events have
	// accumulated. Zero means no cap.
	MaxEvents int

	// MaxFollowPerSeed caps how many discovered detail links are followed
	// per seed page.
	MaxFollowPerSeed int

	// Concurrency above 1 processes seeds on a bounded worker pool. Under
	// concurrency the cap check degrades to overshoot-then-truncate; strict
	// early termination only holds in sequential mode.
	Concurrency int

	// Pause is the polite delay between consecutive fetches.
	Pause time.Duration
}

// Result is the raw output of a crawl before filtering.
type Result struct {
	Events []*event.Event
	Seeds  map[string]PageState
}

// Crawler walks seed pages and their discovered detail pages.
type Crawler struct {
	fetcher Fetcher
	opts    Options
}

// New creates a crawler using the given fetcher.
func New(fetcher Fetcher, opts Options) *Crawler {
	return &Crawler{fetcher: fetcher, opts: opts}
}

// Crawl processes the seeds in order and returns the accumulated raw events.
// Individual page failures degrade to zero events from that page; the only
// errors returned are an empty seed list and context cancellation.
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (*Result, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed pages configured")
	}

	st := newCrawlState(seeds, c.opts.MaxEvents)

	var err error
	if c.opts.Concurrency > 1 {
		err = c.crawlConcurrent(ctx, seeds, st)
	} else {
		err = c.crawlSequential(ctx, seeds, st)
	}

	events, seedStates := st.snapshot()
	logger.Info("crawl finished", logger.Fields{
		"seeds":      len(seeds),
		"raw_events": len(events),
	})

	return &Result{Events: events, Seeds: seedStates}, err
}

func (c *Crawler) crawlSequential(ctx context.Context, seeds []string, st *crawlState) error {
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				return err
			}
		}
		c.processSeed(ctx, seed, st)
		if st.full() {
			logger.Info("event cap reached, stopping crawl early", logger.Fields{
				"processed_seeds": i + 1,
			})
			break
		}
	}
	return nil
}

func (c *Crawler) crawlConcurrent(ctx context.Context, seeds []string, st *crawlState) error {
	// The group context is cancelled once Wait returns, so cancellation is
	// reported from the parent context only.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for _, seed := range seeds {
		seed := seed
		if st.full() {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil || st.full() {
				return nil
			}
			c.processSeed(gctx, seed, st)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// processSeed fetches one seed page, extracts its inline events, then
// follows discovered detail links one level deep. Detail-page events keep
// the seed as their origin page.
func (c *Crawler) processSeed(ctx context.Context, seedURL string, st *crawlState) {
	blocks, ok := c.fetchAndExtract(ctx, seedURL)
	if !ok {
		st.setSeedState(seedURL, PageSkipped)
		return
	}
	st.setSeedState(seedURL, PageFetched)

	events := collectEvents(blocks, seedURL, seedURL)

	links := st.claimLinks(jsonld.DiscoverLinks(blocks, seedURL, c.opts.MaxFollowPerSeed))
	for _, link := range links {
		if ctx.Err() != nil || st.full() {
			break
		}
		if err := c.pause(ctx); err != nil {
			break
		}
		detailBlocks, ok := c.fetchAndExtract(ctx, link)
		if !ok {
			continue
		}
		events = append(events, collectEvents(detailBlocks, link, seedURL)...)
	}

	st.addEvents(events)
	st.setSeedState(seedURL, PageExtracted)

	logger.Debug("seed extracted", logger.Fields{
		"seed":   seedURL,
		"events": len(events),
		"links":  len(links),
	})
}

// fetchAndExtract fetches a page and decodes its structured data. Both
// fetch failures and HTML parse failures degrade to "no blocks".
func (c *Crawler) fetchAndExtract(ctx context.Context, pageURL string) ([]interface{}, bool) {
	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, pageURL)
	logger.RecordTiming("crawl.fetch", time.Since(start))

	if err != nil {
		logger.IncrCounter("crawl.fetch_failures")
		logger.Warn("page fetch failed, skipping", logger.Fields{
			"url":   pageURL,
			"error": err.Error(),
		})
		return nil, false
	}
	logger.IncrCounter("crawl.pages_fetched")

	blocks, err := jsonld.Extract(body)
	if err != nil {
		logger.Warn("page parse failed, skipping", logger.Fields{
			"url":   pageURL,
			"error": err.Error(),
		})
		return nil, false
	}
	return blocks, true
}

// collectEvents builds records from every Event node in the page's blocks.
func collectEvents(blocks []interface{}, pageURL, originPage string) []*event.Event {
	var events []*event.Event
	for _, block := range blocks {
		jsonld.Walk(block, func(node map[string]interface{}) {
			if !jsonld.IsType(node, "Event") {
				return
			}
			if evt := event.FromNode(node, pageURL); evt != nil {
				evt.OriginPage = originPage
				events = append(events, evt)
			}
		})
	}
	return events
}

func (c *Crawler) pause(ctx context.Context) error {
	if c.opts.Pause <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.opts.Pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
