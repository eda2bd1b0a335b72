// Package crawler drives the extraction pipeline across a bounded set of
// seed pages: fetch each seed, pull events out of its structured data,
// follow up to a configured number of discovered detail links one level
// deep, and accumulate the raw event list for filtering. Fetch failures are
// never fatal; a page that cannot be fetched contributes zero events.
package crawler
