package cli

import (
	"sort"

	"github.com/charliewiggs/den/internal/crawler"
)

// sortedSeeds returns the seed URLs in a stable alphabetical order for the
// verbose status listing.
func sortedSeeds(seeds map[string]crawler.PageState) []string {
	out := make([]string, 0, len(seeds))
	for seed := range seeds {
		out = append(out, seed)
	}
	sort.Strings(out)
	return out
}
