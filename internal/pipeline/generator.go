package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/config"
	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/metrics"
)

// ContentFetcher loads items from a user's active sources.
type ContentFetcher interface {
	FetchForUser(ctx context.Context, userID string) ([]domain.Item, error)
}

// ReportSynthesizer turns ranked items into an HTML report.
type ReportSynthesizer interface {
	Synthesize(ctx context.Context, items []domain.Item) string
}

// NewsletterCreator persists generated drafts.
type NewsletterCreator interface {
	Create(ctx context.Context, userID, title, content string) (*domain.Newsletter, error)
	GetOwned(ctx context.Context, id uuid.UUID, userID string) (*domain.Newsletter, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
}

// Generator runs the full draft pipeline: fetch, dedupe, rank, synthesize,
// persist.
type Generator struct {
	fetcher     ContentFetcher
	synthesizer ReportSynthesizer
	newsletters NewsletterCreator
	weights     config.SourceWeights
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewGenerator creates a draft generator. metrics may be nil.
func NewGenerator(
	fetcher ContentFetcher,
	synthesizer ReportSynthesizer,
	newsletters NewsletterCreator,
	weights config.SourceWeights,
	mx *metrics.Metrics,
	log logger.Logger,
) *Generator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Generator{
		fetcher:     fetcher,
		synthesizer: synthesizer,
		newsletters: newsletters,
		weights:     weights,
		metrics:     mx,
		logger:      log,
		now:         time.Now,
	}
}

// GenerateDraft produces a draft newsletter from the user's sources. An
// empty title gets a dated default.
func (g *Generator) GenerateDraft(ctx context.Context, userID, title string) (*domain.Newsletter, error) {
	items, err := g.fetcher.FetchForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	deduped := Dedupe(items)
	ranked := Rank(deduped, g.weights, g.now().UTC())

	g.logger.Info("content pipeline complete",
		logger.String("user_id", userID),
		logger.Int("fetched", len(items)),
		logger.Int("after_dedupe", len(deduped)))

	start := g.now()
	content := g.synthesizer.Synthesize(ctx, ranked)
	if g.metrics != nil {
		g.metrics.ReportGeneration.Observe(time.Since(start).Seconds())
	}

	if title == "" {
		title = "Newsletter Draft " + g.now().UTC().Format("2006-01-02")
	}
	return g.newsletters.Create(ctx, userID, title, content)
}

// RegenerateDraft reruns the pipeline for an existing draft and replaces its
// content. Only drafts can be regenerated; anything past draft reports
// ErrNotFound from the content update.
func (g *Generator) RegenerateDraft(ctx context.Context, userID string, id uuid.UUID) (*domain.Newsletter, error) {
	nl, err := g.newsletters.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	items, err := g.fetcher.FetchForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranked := Rank(Dedupe(items), g.weights, g.now().UTC())

	start := g.now()
	content := g.synthesizer.Synthesize(ctx, ranked)
	if g.metrics != nil {
		g.metrics.ReportGeneration.Observe(time.Since(start).Seconds())
	}

	if err := g.newsletters.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	nl.Content = content
	return nl, nil
}
