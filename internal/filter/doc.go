// Package filter reduces the raw crawl output to a clean event list: a
// geofence with a text fallback, a time window with a trailing grace period,
// composite-key deduplication, and a stable chronological sort. Filters are
// fail-open: when the data needed to judge a record is missing or malformed,
// the record is kept.
package filter
