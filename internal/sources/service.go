package sources

import (
	"context"
	"errors"
	"sync"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/metrics"
)

// SourceStore lists a user's registered sources.
type SourceStore interface {
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Source, error)
}

// Service fans fetches out across a user's active sources.
type Service struct {
	store          SourceStore
	adapters       map[string]Adapter
	enricher       *Enricher
	cache          *ContentCache
	metrics        *metrics.Metrics
	logger         logger.Logger
	perSourceLimit int
}

// NewService creates a source-fetching service. cache and metrics may be nil.
func NewService(
	store SourceStore,
	adapters []Adapter,
	enricher *Enricher,
	cache *ContentCache,
	mx *metrics.Metrics,
	log logger.Logger,
	perSourceLimit int,
) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	byType := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byType[a.Type()] = a
	}
	return &Service{
		store:          store,
		adapters:       byType,
		enricher:       enricher,
		cache:          cache,
		metrics:        mx,
		logger:         log,
		perSourceLimit: perSourceLimit,
	}
}

// FetchForUser fetches all active sources for a user concurrently. A failing
// source is logged and skipped; only a fully empty result is an error.
func (s *Service) FetchForUser(ctx context.Context, userID string) ([]domain.Item, error) {
	srcs, err := s.store.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, domain.ErrNoActiveSources
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []domain.Item
	)
	for i := range srcs {
		src := srcs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetched := s.fetchOne(ctx, src)
			if len(fetched) == 0 {
				return
			}
			mu.Lock()
			items = append(items, fetched...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(items) == 0 {
		return nil, domain.ErrNoContent
	}

	if s.enricher != nil {
		s.enricher.Enrich(ctx, items)
	}
	return items, nil
}

// FetchSource fetches one source, serving from the content cache when warm.
func (s *Service) FetchSource(ctx context.Context, src domain.Source) ([]domain.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, src.ID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("content cache read failed",
				logger.String("source_id", src.ID.String()),
				logger.Error(err))
		}
	}

	adapter, ok := s.adapters[src.SourceType]
	if !ok {
		adapter = s.adapters[domain.SourceTypeBlog]
	}
	if adapter == nil {
		return nil, domain.ErrNoContent
	}

	items, err := adapter.Fetch(ctx, src, s.perSourceLimit)
	if err != nil {
		return nil, err
	}

	if s.enricher != nil {
		s.enricher.Enrich(ctx, items)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, src.ID, items); err != nil {
			s.logger.Warn("content cache write failed",
				logger.String("source_id", src.ID.String()),
				logger.Error(err))
		}
	}
	return items, nil
}

// fetchOne runs one source fetch, swallowing the error after recording it.
func (s *Service) fetchOne(ctx context.Context, src domain.Source) []domain.Item {
	adapter, ok := s.adapters[src.SourceType]
	if !ok {
		// Unknown types get the heuristic scraper rather than nothing.
		adapter = s.adapters[domain.SourceTypeBlog]
	}
	if adapter == nil {
		s.logger.Warn("no adapter for source type",
			logger.String("source_type", src.SourceType))
		return nil
	}

	items, err := adapter.Fetch(ctx, src, s.perSourceLimit)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SourceFetchErrors.WithLabelValues(src.SourceType).Inc()
		}
		s.logger.Warn("source fetch failed",
			logger.String("source_name", src.SourceName),
			logger.String("source_type", src.SourceType),
			logger.Error(err))
		return nil
	}

	if s.metrics != nil {
		s.metrics.ItemsFetched.WithLabelValues(src.SourceType).Add(float64(len(items)))
	}
	s.logger.Debug("source fetched",
		logger.String("source_name", src.SourceName),
		logger.Int("items", len(items)))
	return items
}
