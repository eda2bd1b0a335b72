// Package cli implements the command-line interface for den-events.
//
// The cli package provides the Cobra-based CLI that runs one aggregation
// pass: load configuration, crawl the seed pages, filter and dedupe the
// extracted events, format the digest, and write the report to its
// configured destinations (stdout, local data directory, S3, iCalendar).
package cli
