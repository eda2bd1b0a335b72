// Package storage persists crawl results: a JSON report envelope written to
// a local data directory, with optional gzip encoding and an optional S3
// upload for deployments that serve the report to a frontend.
package storage
