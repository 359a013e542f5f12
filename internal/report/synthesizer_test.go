package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/report"
)

// fakeBackend scripts a sequence of generation responses.
type fakeBackend struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeBackend) Generate(_ context.Context, _, _ string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var text string
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return text, err
}

func testItems() []domain.Item {
	published := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	return []domain.Item{
		{Title: "Go 1.25 released", URL: "https://go.dev/blog/go1.25", Source: "The Go Blog", PublishedAt: &published, Summary: "Release notes"},
		{Title: "A <script> in a title", URL: "https://a.com/?q=1&r=2", Source: "r/golang", Score: 12},
	}
}

func newSynth(backend report.GenerationBackend, enabled bool) *report.Synthesizer {
	return report.NewSynthesizer(backend, report.Config{
		Enabled:     enabled,
		Model:       "claude-sonnet-4-5",
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
	}, nil)
}

func TestSynthesize_UsesBackendResponse(t *testing.T) {
	backend := &fakeBackend{responses: []string{"<!DOCTYPE html><html><body>ok</body></html>"}}
	s := newSynth(backend, true)

	got := s.Synthesize(context.Background(), testItems())

	if got != "<!DOCTYPE html><html><body>ok</body></html>" {
		t.Errorf("Synthesize() = %q, want the backend document", got)
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1 (no retry on success)", backend.calls)
	}
}

func TestSynthesize_StripsMarkdownFences(t *testing.T) {
	backend := &fakeBackend{responses: []string{"```html\n<!DOCTYPE html><html></html>\n```"}}
	s := newSynth(backend, true)

	got := s.Synthesize(context.Background(), testItems())

	if got != "<!DOCTYPE html><html></html>" {
		t.Errorf("Synthesize() = %q, want fences stripped", got)
	}
}

func TestSynthesize_RetriesThenSucceeds(t *testing.T) {
	backend := &fakeBackend{
		errs:      []error{errors.New("transport error"), nil},
		responses: []string{"", "<!DOCTYPE html><html></html>"},
	}
	s := newSynth(backend, true)

	got := s.Synthesize(context.Background(), testItems())

	if got != "<!DOCTYPE html><html></html>" {
		t.Errorf("Synthesize() = %q, want second attempt's document", got)
	}
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}

func TestSynthesize_EmptyResponseIsRetried(t *testing.T) {
	backend := &fakeBackend{responses: []string{"", "   ", ""}}
	s := newSynth(backend, true)

	got := s.Synthesize(context.Background(), testItems())

	if backend.calls != 3 {
		t.Errorf("backend called %d times, want 3 (empty responses retried)", backend.calls)
	}
	if !strings.Contains(got, "Fallback Report") {
		t.Errorf("Synthesize() should fall back after exhausting attempts, got %q", got)
	}
}

func TestSynthesize_DisabledBackendFallsBack(t *testing.T) {
	backend := &fakeBackend{responses: []string{"<html>should not be used</html>"}}
	s := newSynth(backend, false)

	got := s.Synthesize(context.Background(), testItems())

	if backend.calls != 0 {
		t.Errorf("backend called %d times, want 0 when disabled", backend.calls)
	}
	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("fallback should be a full HTML document, got prefix %q", got[:min(40, len(got))])
	}
}

func TestFallback_DeterministicAndEscaped(t *testing.T) {
	items := testItems()

	first := report.Fallback(items, 30)
	second := report.Fallback(items, 30)

	if first != second {
		t.Error("Fallback() is not deterministic for identical input")
	}
	if !strings.Contains(first, "&lt;script&gt;") {
		t.Error("Fallback() must HTML-escape item titles")
	}
	if !strings.Contains(first, "https://a.com/?q=1&amp;r=2") {
		t.Error("Fallback() must HTML-escape item URLs")
	}
	if !strings.Contains(first, "[The Go Blog]") {
		t.Error("Fallback() must list the item source")
	}
}

func TestFallback_TruncatesToMaxItems(t *testing.T) {
	items := make([]domain.Item, 50)
	for i := range items {
		items[i] = domain.Item{Title: "t", URL: "https://a.com", Source: "s"}
	}

	got := report.Fallback(items, 30)

	if n := strings.Count(got, "<li>"); n != 30 {
		t.Errorf("Fallback() listed %d items, want 30", n)
	}
}

func TestBuildPrompt(t *testing.T) {
	items := testItems()

	prompt := report.BuildPrompt(items, 60)

	for _, want := range []string{
		"HTML5 only",
		"Executive Summary",
		"Key Takeaways",
		"- [source=The Go Blog] title=Go 1.25 released date=2026-08-26T09:00:00Z url=https://go.dev/blog/go1.25 summary=Release notes",
		"date=N/A",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q", want)
		}
	}
}

func TestBuildPrompt_Truncates(t *testing.T) {
	items := make([]domain.Item, 10)
	for i := range items {
		items[i] = domain.Item{Title: "t", URL: "https://a.com", Source: "s"}
	}

	prompt := report.BuildPrompt(items, 4)

	if n := strings.Count(prompt, "- [source="); n != 4 {
		t.Errorf("BuildPrompt() encoded %d items, want 4", n)
	}
}
