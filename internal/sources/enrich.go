package sources

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
)

const enrichConcurrency = 4

// Enricher fills in missing item images by reading the article page's
// Open Graph metadata. Failures leave the item untouched.
type Enricher struct {
	client *http.Client
	logger logger.Logger
}

// NewEnricher creates an enricher with the given fetch timeout.
func NewEnricher(timeout time.Duration, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Enricher{client: newHTTPClient(timeout), logger: log}
}

// Enrich fetches og:image for items without one, bounded by a small worker
// pool. The slice is mutated in place.
func (e *Enricher) Enrich(ctx context.Context, items []domain.Item) {
	sem := make(chan struct{}, enrichConcurrency)
	var wg sync.WaitGroup

	for i := range items {
		if items[i].ImageURL != "" || items[i].URL == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(item *domain.Item) {
			defer wg.Done()
			defer func() { <-sem }()

			img, err := e.ogImage(ctx, item.URL)
			if err != nil {
				e.logger.Debug("og:image lookup failed",
					logger.String("url", item.URL),
					logger.Error(err))
				return
			}
			item.ImageURL = img
		}(&items[i])
	}

	wg.Wait()
}

func (e *Enricher) ogImage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	img, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return img, nil
}
