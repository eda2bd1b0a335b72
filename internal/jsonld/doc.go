// Package jsonld extracts schema.org structured data embedded in HTML pages
// and provides the generic graph traversal used for both event extraction
// and detail-link discovery. Extraction is best effort: blocks that fail to
// decode are skipped, never reported as errors.
package jsonld
