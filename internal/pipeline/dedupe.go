// Package pipeline implements the dedupe and rank stages of the aggregation
// pipeline. Both stages treat items as read-only values.
package pipeline

import (
	"strings"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// dedupeKey identifies near-identical items. Matching is exact on the
// normalized pair; paraphrased titles or alternate URLs are intentionally
// not merged.
type dedupeKey struct {
	url   string
	title string
}

func normalizeURL(url string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(url)), "/")
}

func keyFor(it domain.Item) dedupeKey {
	return dedupeKey{
		url:   normalizeURL(it.URL),
		title: strings.ToLower(strings.TrimSpace(it.Title)),
	}
}

// Dedupe collapses items sharing a normalized (url, title) key to a single
// representative, keeping the one with the strictly higher score; ties keep
// the first item encountered. Output order is the insertion order of the
// first-seen key per group.
//
// Items with an empty url and title all collapse to one representative;
// that is accepted behavior, not a defect.
func Dedupe(items []domain.Item) []domain.Item {
	seen := make(map[dedupeKey]int, len(items))
	out := make([]domain.Item, 0, len(items))

	for _, it := range items {
		key := keyFor(it)
		if idx, ok := seen[key]; ok {
			if it.Score > out[idx].Score {
				out[idx] = it
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, it)
	}

	return out
}
