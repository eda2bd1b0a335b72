package jsonld

import (
	"sort"
	"strings"
)

// Walk visits every mapping node reachable from v, depth first, root first.
// Map keys are traversed in sorted order so repeated walks over the same
// object see the same node sequence. Walk knows nothing about schema.org
// vocabularies; callers filter the nodes they care about by type.
func Walk(v interface{}, visit func(node map[string]interface{})) {
	switch n := v.(type) {
	case map[string]interface{}:
		visit(n)
		keys := make([]string, 0, len(n))
		for key := range n {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			Walk(n[key], visit)
		}
	case []interface{}:
		for _, item := range n {
			Walk(item, visit)
		}
	}
}

// IsType reports whether a node declares the given schema.org type. The
// @type value may be a single string or a list of strings; matching is
// case-insensitive either way.
func IsType(node map[string]interface{}, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}
