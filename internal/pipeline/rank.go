package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/config"
	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

const (
	// recencyWindowHours is the linear decay window for the recency bonus.
	recencyWindowHours = 48.0

	// subredditPrefix marks Reddit source labels (e.g. "r/python").
	subredditPrefix = "r/"
)

// sourceWeight resolves the configured weight for a source label.
//
// Labels starting with "r/" take the "reddit" weight. Otherwise the weight
// table is scanned in declared order and the first key that is a substring of
// the lower-cased label wins; that lets one entry match many label variants.
// Unmatched labels fall back to the "rss" weight, or 0 when unset.
func sourceWeight(source string, weights config.SourceWeights) float64 {
	s := strings.ToLower(strings.TrimSpace(source))
	if strings.HasPrefix(s, subredditPrefix) {
		w, _ := weights.Get("reddit")
		return w
	}

	for _, sw := range weights {
		if sw.Key != "" && strings.Contains(s, sw.Key) {
			return sw.Weight
		}
	}

	w, _ := weights.Get("rss")
	return w
}

// finalScore computes the composite ranking score for one item.
//
//	age_hours     = max(0, (now - published_at) / 1h)  -- unknown time -> 0
//	recency_bonus = max(0, 48 - age_hours)
//	final         = item.score + recency_bonus + source_weight
func finalScore(it domain.Item, weights config.SourceWeights, now time.Time) float64 {
	ageHours := 0.0
	if it.PublishedAt != nil {
		ageHours = now.Sub(it.PublishedAt.UTC()).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
	}

	recencyBonus := recencyWindowHours - ageHours
	if recencyBonus < 0 {
		recencyBonus = 0
	}

	return it.Score + recencyBonus + sourceWeight(it.Source, weights)
}

// Rank returns the items sorted descending by composite score. The sort is
// stable: items with equal scores keep their relative input order. The input
// slice is not modified.
func Rank(items []domain.Item, weights config.SourceWeights, now time.Time) []domain.Item {
	type scored struct {
		item  domain.Item
		score float64
	}

	ranked := make([]scored, len(items))
	for i, it := range items {
		ranked[i] = scored{item: it, score: finalScore(it, weights, now)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]domain.Item, len(ranked))
	for i, s := range ranked {
		out[i] = s.item
	}
	return out
}
