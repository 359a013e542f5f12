// Package sources fetches content items from user-registered sources.
package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

const (
	defaultFetchTimeout = 15 * time.Second
	userAgent           = "CreatorPulse/1.0 (content aggregator)"
)

// Adapter fetches items from one kind of source.
type Adapter interface {
	// Type returns the source_type this adapter handles.
	Type() string
	// Fetch returns up to limit items from the source. Items carry the
	// source's display name so ranking can weight them.
	Fetch(ctx context.Context, src domain.Source, limit int) ([]domain.Item, error)
}

// newHTTPClient returns the shared client configuration for source fetches.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &http.Client{Timeout: timeout}
}
