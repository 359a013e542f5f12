// Package domain contains the core domain models for the CreatorPulse service.
package domain

import "time"

// Item is one piece of sourced content flowing through the aggregation
// pipeline. Items are produced by source adapters, optionally enriched with a
// preview image, consumed read-only by dedupe/rank/report synthesis, and
// discarded afterwards. They are never persisted individually.
type Item struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`

	// Score is the source-native relevance signal (e.g. Reddit upvotes).
	// Usually non-negative, but nothing enforces that; ranking must tolerate
	// negative and zero values.
	Score float64 `json:"score"`
}
