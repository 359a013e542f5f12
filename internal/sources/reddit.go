package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// RedditAdapter fetches hot posts from a subreddit via the public JSON
// listing endpoint. No OAuth; the endpoint only needs a descriptive
// User-Agent.
type RedditAdapter struct {
	client  *http.Client
	baseURL string
}

// NewRedditAdapter creates a Reddit adapter with the given fetch timeout.
func NewRedditAdapter(timeout time.Duration) *RedditAdapter {
	return &RedditAdapter{
		client:  newHTTPClient(timeout),
		baseURL: "https://www.reddit.com",
	}
}

// Type implements Adapter.
func (a *RedditAdapter) Type() string { return domain.SourceTypeReddit }

// redditListing mirrors the subset of the listing payload we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Selftext   string  `json:"selftext"`
	Score      float64 `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Thumbnail  string  `json:"thumbnail"`
	Stickied   bool    `json:"stickied"`
}

// Fetch implements Adapter. The source identifier is a subreddit name, with
// or without the r/ prefix.
func (a *RedditAdapter) Fetch(ctx context.Context, src domain.Source, limit int) ([]domain.Item, error) {
	sub := strings.TrimPrefix(strings.TrimSpace(src.SourceIdentifier), "r/")
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", a.baseURL, url.PathEscape(sub), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build reddit request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", sub, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch r/%s: unexpected status %d", sub, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s listing: %w", sub, err)
	}

	items := make([]domain.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if len(items) >= limit {
			break
		}
		post := child.Data
		if post.Stickied || post.Title == "" {
			continue
		}
		items = append(items, domain.Item{
			Title:       html.UnescapeString(post.Title),
			URL:         a.postURL(post),
			Source:      src.SourceName,
			PublishedAt: redditTime(post.CreatedUTC),
			Summary:     truncateSummary(post.Selftext),
			ImageURL:    redditThumbnail(post.Thumbnail),
			Score:       post.Score,
		})
	}
	return items, nil
}

// postURL prefers the external link; self posts link back to the thread.
func (a *RedditAdapter) postURL(post redditPost) string {
	if post.URL != "" && strings.HasPrefix(post.URL, "http") {
		return post.URL
	}
	return a.baseURL + post.Permalink
}

func redditTime(createdUTC float64) *time.Time {
	if createdUTC <= 0 {
		return nil
	}
	t := time.Unix(int64(createdUTC), 0).UTC()
	return &t
}

// redditThumbnail filters the placeholder values ("self", "default",
// "nsfw") the API uses instead of a URL.
func redditThumbnail(thumb string) string {
	if strings.HasPrefix(thumb, "http") {
		return thumb
	}
	return ""
}
