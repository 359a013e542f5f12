package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// ErrCacheMiss is returned when a source has no cached content.
var ErrCacheMiss = errors.New("content cache miss")

// ContentCache stores fetched source content in Redis so repeated previews
// of the same source do not refetch it.
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContentCache creates a cache with the given TTL.
func NewContentCache(client *redis.Client, ttl time.Duration) *ContentCache {
	return &ContentCache{client: client, ttl: ttl}
}

func contentKey(sourceID uuid.UUID) string {
	return "creatorpulse:source-content:" + sourceID.String()
}

// Get returns the cached items for a source, or ErrCacheMiss.
func (c *ContentCache) Get(ctx context.Context, sourceID uuid.UUID) ([]domain.Item, error) {
	data, err := c.client.Get(ctx, contentKey(sourceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return items, nil
}

// Set stores the items for a source.
func (c *ContentCache) Set(ctx context.Context, sourceID uuid.UUID, items []domain.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, contentKey(sourceID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
