package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// minTitleLength filters navigation links masquerading as article titles.
const minTitleLength = 15

// BlogAdapter scrapes a blog index page for article links. It is the
// fallback for sources without a machine-readable feed, so it stays
// deliberately heuristic: anchors inside article/h2/h3 containers with a
// plausible title.
type BlogAdapter struct {
	client *http.Client
}

// NewBlogAdapter creates a blog adapter with the given fetch timeout.
func NewBlogAdapter(timeout time.Duration) *BlogAdapter {
	return &BlogAdapter{client: newHTTPClient(timeout)}
}

// Type implements Adapter.
func (a *BlogAdapter) Type() string { return domain.SourceTypeBlog }

// Fetch implements Adapter.
func (a *BlogAdapter) Fetch(ctx context.Context, src domain.Source, limit int) ([]domain.Item, error) {
	pageURL := src.SourceIdentifier

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build blog request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blog %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch blog %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse blog %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse blog url %s: %w", pageURL, err)
	}

	items := make([]domain.Item, 0, limit)
	seen := make(map[string]struct{})

	doc.Find("article a, h2 a, h3 a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		title := strings.TrimSpace(sel.Text())
		if len(title) < minTitleLength {
			return true
		}

		abs := resolveURL(base, href)
		if abs == "" {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}

		items = append(items, domain.Item{
			Title:  title,
			URL:    abs,
			Source: src.SourceName,
		})
		return len(items) < limit
	})

	return items, nil
}

// resolveURL makes href absolute against the page URL, dropping fragments
// and non-http schemes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
