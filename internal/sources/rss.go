package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

const summaryMaxRunes = 500

// RSSAdapter fetches RSS and Atom feeds. It also backs the YouTube adapter,
// which is just an RSS feed at a well-known URL.
type RSSAdapter struct {
	parser *gofeed.Parser
}

// NewRSSAdapter creates an RSS adapter with the given fetch timeout.
func NewRSSAdapter(timeout time.Duration) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient(timeout)
	parser.UserAgent = userAgent
	return &RSSAdapter{parser: parser}
}

// Type implements Adapter.
func (a *RSSAdapter) Type() string { return domain.SourceTypeRSS }

// Fetch implements Adapter.
func (a *RSSAdapter) Fetch(ctx context.Context, src domain.Source, limit int) ([]domain.Item, error) {
	return a.fetchFeed(ctx, src.SourceIdentifier, src.SourceName, limit)
}

func (a *RSSAdapter) fetchFeed(ctx context.Context, feedURL, sourceName string, limit int) ([]domain.Item, error) {
	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := make([]domain.Item, 0, min(limit, len(feed.Items)))
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry.Link == "" || entry.Title == "" {
			continue
		}
		items = append(items, domain.Item{
			Title:       strings.TrimSpace(entry.Title),
			URL:         entry.Link,
			Source:      sourceName,
			PublishedAt: feedEntryTime(entry),
			Summary:     truncateSummary(entry.Description),
			ImageURL:    feedEntryImage(entry),
		})
	}
	return items, nil
}

// YouTubeAdapter fetches a channel's upload feed.
type YouTubeAdapter struct {
	rss *RSSAdapter
}

// NewYouTubeAdapter creates a YouTube adapter sharing the RSS parser setup.
func NewYouTubeAdapter(timeout time.Duration) *YouTubeAdapter {
	return &YouTubeAdapter{rss: NewRSSAdapter(timeout)}
}

// Type implements Adapter.
func (a *YouTubeAdapter) Type() string { return domain.SourceTypeYouTube }

// Fetch implements Adapter. The source identifier is either a channel ID or a
// full feed URL.
func (a *YouTubeAdapter) Fetch(ctx context.Context, src domain.Source, limit int) ([]domain.Item, error) {
	feedURL := src.SourceIdentifier
	if !strings.HasPrefix(feedURL, "http") {
		feedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=" + feedURL
	}
	return a.rss.fetchFeed(ctx, feedURL, src.SourceName, limit)
}

func feedEntryTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		t := entry.PublishedParsed.UTC()
		return &t
	}
	if entry.UpdatedParsed != nil {
		t := entry.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

func feedEntryImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func truncateSummary(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= summaryMaxRunes {
		return s
	}
	return string(runes[:summaryMaxRunes])
}
