package parser

import (
	"sort"

	"github.com/agext/levenshtein"
)

const maxSuggestDistance = 3

// suggestTag returns the registered tag name closest to name, or "" when
// nothing is close enough.
func (p *Parser) suggestTag(name string) string {
	names := make([]string, 0, len(p.tags))
	for n := range p.tags {
		names = append(names, n)
	}
	sort.Strings(names)

	best, bestDist := "", maxSuggestDistance+1
	for _, n := range names {
		if d := levenshtein.Distance(name, n, nil); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}
