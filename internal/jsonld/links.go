package jsonld

import (
	"net/url"
	"strings"
)

// listTypes are the node types whose list items point at event detail pages.
var listTypes = []string{"ItemList", "SearchResultsPage"}

// DiscoverLinks pulls candidate detail-page URLs out of the listing nodes in
// a page's structured data. Relative links are resolved against pageURL.
// The result preserves order of appearance, drops duplicates, and is
// truncated at max (max <= 0 means no links).
func DiscoverLinks(blocks []interface{}, pageURL string, max int) []string {
	if max <= 0 {
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	links := make([]string, 0, max)

	add := func(raw string) {
		if raw == "" || len(links) >= max {
			return
		}
		resolved := resolveLink(base, raw)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	}

	for _, block := range blocks {
		Walk(block, func(node map[string]interface{}) {
			if !isListNode(node) {
				return
			}
			items, ok := node["itemListElement"].([]interface{})
			if !ok {
				return
			}
			for _, item := range items {
				add(itemURL(item))
			}
		})
	}

	return links
}

func isListNode(node map[string]interface{}) bool {
	for _, t := range listTypes {
		if IsType(node, t) {
			return true
		}
	}
	return false
}

// itemURL reads a list item's URL directly or, failing that, from its
// nested item sub-object's url or identifier field.
func itemURL(item interface{}) string {
	elem, ok := item.(map[string]interface{})
	if !ok {
		return ""
	}
	if u, ok := elem["url"].(string); ok && strings.TrimSpace(u) != "" {
		return strings.TrimSpace(u)
	}
	sub, ok := elem["item"].(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"url", "@id"} {
		if u, ok := sub[key].(string); ok && strings.TrimSpace(u) != "" {
			return strings.TrimSpace(u)
		}
	}
	return ""
}

func resolveLink(base *url.URL, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}
