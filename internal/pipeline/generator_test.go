package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/config"
	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/pipeline"
)

type stubFetcher struct {
	items []domain.Item
	err   error
}

func (s *stubFetcher) FetchForUser(_ context.Context, _ string) ([]domain.Item, error) {
	return s.items, s.err
}

type stubSynthesizer struct {
	got []domain.Item
}

func (s *stubSynthesizer) Synthesize(_ context.Context, items []domain.Item) string {
	s.got = items
	return "<html>report</html>"
}

type stubCreator struct {
	created        *domain.Newsletter
	existing       *domain.Newsletter
	updatedContent string
	updateErr      error
}

func (s *stubCreator) Create(_ context.Context, userID, title, content string) (*domain.Newsletter, error) {
	s.created = &domain.Newsletter{UserID: userID, Title: title, Content: content, Status: domain.StatusDraft}
	return s.created, nil
}

func (s *stubCreator) GetOwned(_ context.Context, id uuid.UUID, userID string) (*domain.Newsletter, error) {
	if s.existing == nil || s.existing.ID != id || s.existing.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.existing, nil
}

func (s *stubCreator) UpdateContent(_ context.Context, _ uuid.UUID, content string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedContent = content
	return nil
}

func TestGenerateDraft(t *testing.T) {
	published := time.Now().UTC().Add(-time.Hour)
	fetcher := &stubFetcher{items: []domain.Item{
		{Title: "Dup", URL: "https://a.test/x", Source: "rss", Score: 1},
		{Title: "Dup", URL: "https://a.test/x/", Source: "rss", Score: 5},
		{Title: "Fresh", URL: "https://b.test/y", Source: "rss", Score: 20, PublishedAt: &published},
	}}
	synth := &stubSynthesizer{}
	creator := &stubCreator{}
	weights := config.SourceWeights{{Key: "rss", Weight: 1}}

	gen := pipeline.NewGenerator(fetcher, synth, creator, weights, nil, nil)

	nl, err := gen.GenerateDraft(context.Background(), "user-1", "My Draft")
	if err != nil {
		t.Fatalf("GenerateDraft() error = %v", err)
	}

	if len(synth.got) != 2 {
		t.Errorf("synthesizer saw %d items, want 2 after dedupe", len(synth.got))
	}
	if synth.got[0].Title != "Fresh" {
		t.Errorf("first ranked item = %q, want the recent one first", synth.got[0].Title)
	}
	if nl.Title != "My Draft" || nl.Content != "<html>report</html>" || nl.Status != domain.StatusDraft {
		t.Errorf("GenerateDraft() = %+v", nl)
	}
}

func TestGenerateDraft_DefaultTitle(t *testing.T) {
	fetcher := &stubFetcher{items: []domain.Item{{Title: "a", URL: "https://a.test"}}}
	creator := &stubCreator{}
	gen := pipeline.NewGenerator(fetcher, &stubSynthesizer{}, creator, nil, nil, nil)

	nl, err := gen.GenerateDraft(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("GenerateDraft() error = %v", err)
	}
	want := "Newsletter Draft " + time.Now().UTC().Format("2006-01-02")
	if nl.Title != want {
		t.Errorf("GenerateDraft() title = %q, want %q", nl.Title, want)
	}
}

func TestRegenerateDraft(t *testing.T) {
	id := uuid.New()
	creator := &stubCreator{existing: &domain.Newsletter{
		ID: id, UserID: "user-1", Title: "My Draft", Content: "<html>old</html>",
		Status: domain.StatusDraft,
	}}
	fetcher := &stubFetcher{items: []domain.Item{{Title: "a", URL: "https://a.test"}}}
	gen := pipeline.NewGenerator(fetcher, &stubSynthesizer{}, creator, nil, nil, nil)

	nl, err := gen.RegenerateDraft(context.Background(), "user-1", id)
	if err != nil {
		t.Fatalf("RegenerateDraft() error = %v", err)
	}
	if nl.Content != "<html>report</html>" || creator.updatedContent != "<html>report</html>" {
		t.Errorf("RegenerateDraft() content = %q, stored %q", nl.Content, creator.updatedContent)
	}
	if nl.Title != "My Draft" {
		t.Errorf("RegenerateDraft() title = %q, want unchanged", nl.Title)
	}
}

func TestRegenerateDraft_NotOwned(t *testing.T) {
	creator := &stubCreator{}
	gen := pipeline.NewGenerator(&stubFetcher{}, &stubSynthesizer{}, creator, nil, nil, nil)

	_, err := gen.RegenerateDraft(context.Background(), "user-1", uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RegenerateDraft() error = %v, want ErrNotFound", err)
	}
}

func TestGenerateDraft_FetchErrorPropagates(t *testing.T) {
	fetcher := &stubFetcher{err: domain.ErrNoActiveSources}
	gen := pipeline.NewGenerator(fetcher, &stubSynthesizer{}, &stubCreator{}, nil, nil, nil)

	_, err := gen.GenerateDraft(context.Background(), "user-1", "")
	if !errors.Is(err, domain.ErrNoActiveSources) {
		t.Errorf("GenerateDraft() error = %v, want ErrNoActiveSources", err)
	}
}
