// Package event defines the canonical event record produced by the crawl
// pipeline, the builder that converts schema.org Event nodes into records,
// and the lenient start-time parsing shared by the filters and sorter.
package event
