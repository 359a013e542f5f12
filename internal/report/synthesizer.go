// Package report turns a ranked item list into a single self-contained HTML
// document, via a generation backend with bounded retries and a
// deterministic fallback.
package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/retry"
)

// ErrEmptyResponse is returned by the retry loop when the backend produced a
// well-formed but empty response.
var ErrEmptyResponse = errors.New("generation backend returned empty response")

// GenerationBackend is the text-generation capability used to synthesize the
// narrative report.
type GenerationBackend interface {
	// Generate returns the model output for the prompt. Any failure mode
	// (missing credential, transport error, backend error) surfaces as a
	// non-nil error; the synthesizer treats all of them uniformly.
	Generate(ctx context.Context, model, prompt string) (string, error)
}

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 5 * time.Second
	defaultMaxItems    = 60
	defaultFallbackMax = 30
)

// Config holds synthesizer knobs. Zero values take the documented defaults.
type Config struct {
	Enabled          bool
	Model            string
	MaxItems         int
	FallbackMaxItems int
	MaxAttempts      int
	RetryDelay       time.Duration
}

// Synthesizer generates the report document. Synthesize never fails: when
// the backend is disabled or every attempt is exhausted it falls back to a
// deterministic HTML listing.
type Synthesizer struct {
	backend GenerationBackend
	cfg     Config
	log     logger.Logger
}

// NewSynthesizer creates a Synthesizer. backend may be nil when cfg.Enabled
// is false.
func NewSynthesizer(backend GenerationBackend, cfg Config, log logger.Logger) *Synthesizer {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultMaxItems
	}
	if cfg.FallbackMaxItems <= 0 {
		cfg.FallbackMaxItems = defaultFallbackMax
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Synthesizer{backend: backend, cfg: cfg, log: log}
}

// Synthesize produces the report HTML for an already deduped and ranked item
// list. The returned string is always a non-empty HTML document.
func (s *Synthesizer) Synthesize(ctx context.Context, items []domain.Item) string {
	if s.cfg.Enabled && s.backend != nil {
		if html, ok := s.generate(ctx, items); ok {
			return html
		}
		s.log.Warn("generation backend exhausted, using fallback report")
	}

	return Fallback(items, s.cfg.FallbackMaxItems)
}

// generate runs the retry loop against the backend. A well-formed non-empty
// response is accepted on the spot; credential, transport, and empty
// responses are retried with a fixed delay until the attempt budget runs
// out.
func (s *Synthesizer) generate(ctx context.Context, items []domain.Item) (string, bool) {
	prompt := BuildPrompt(items, s.cfg.MaxItems)

	var html string
	attempt := 0
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: s.cfg.MaxAttempts,
		Delay:       s.cfg.RetryDelay,
	}, func() error {
		attempt++
		s.log.Debug("calling generation backend",
			logger.String("model", s.cfg.Model),
			logger.Int("attempt", attempt),
			logger.Int("items", len(items)))

		text, genErr := s.backend.Generate(ctx, s.cfg.Model, prompt)
		if genErr != nil {
			s.log.Warn("generation attempt failed",
				logger.Int("attempt", attempt),
				logger.Error(genErr))
			return genErr
		}

		text = stripFences(text)
		if text == "" {
			s.log.Warn("generation backend returned no text",
				logger.Int("attempt", attempt))
			return ErrEmptyResponse
		}

		html = text
		return nil
	})
	if err != nil {
		return "", false
	}

	s.log.Info("report generated",
		logger.String("model", s.cfg.Model),
		logger.Int("attempts", attempt),
		logger.Int("length", len(html)))
	return html, true
}

// stripFences removes a leading markdown HTML code-fence opener and a
// trailing fence closer, then trims surrounding whitespace. Backends
// occasionally wrap the document despite being told not to.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```html") {
		text = text[len("```html"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}
	return strings.TrimSpace(text)
}
