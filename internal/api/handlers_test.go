package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/api"
	"github.com/jhawaritvik/CreatorPulse/internal/delivery"
	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

type fakeGenerator struct {
	newsletter *domain.Newsletter
	err        error
	gotUser    string
	gotTitle   string
}

func (f *fakeGenerator) GenerateDraft(_ context.Context, userID, title string) (*domain.Newsletter, error) {
	f.gotUser = userID
	f.gotTitle = title
	return f.newsletter, f.err
}

func (f *fakeGenerator) RegenerateDraft(_ context.Context, userID string, _ uuid.UUID) (*domain.Newsletter, error) {
	f.gotUser = userID
	return f.newsletter, f.err
}

type fakeSender struct {
	outcome *delivery.SendOutcome
	err     error
	gotReq  delivery.SendRequest
}

func (f *fakeSender) Send(_ context.Context, req delivery.SendRequest) (*delivery.SendOutcome, error) {
	f.gotReq = req
	return f.outcome, f.err
}

type fakeNewsletterReader struct {
	all       []domain.Newsletter
	scheduled []domain.Newsletter
}

func (f *fakeNewsletterReader) ListByUser(_ context.Context, _ string) ([]domain.Newsletter, error) {
	return f.all, nil
}

func (f *fakeNewsletterReader) ListScheduledByUser(_ context.Context, _ string) ([]domain.Newsletter, error) {
	return f.scheduled, nil
}

type fakeClientReader struct {
	clients []domain.Client
}

func (f *fakeClientReader) ListByUser(_ context.Context, _ string) ([]domain.Client, error) {
	return f.clients, nil
}

type fakeSourceReader struct {
	sources []domain.Source
	owned   *domain.Source
}

func (f *fakeSourceReader) ListActiveByUser(_ context.Context, _ string) ([]domain.Source, error) {
	return f.sources, nil
}

func (f *fakeSourceReader) GetOwned(_ context.Context, _ uuid.UUID, _ string) (*domain.Source, error) {
	if f.owned == nil {
		return nil, domain.ErrNotFound
	}
	return f.owned, nil
}

type fakeContentFetcher struct {
	items []domain.Item
}

func (f *fakeContentFetcher) FetchSource(_ context.Context, _ domain.Source) ([]domain.Item, error) {
	return f.items, nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type routerDeps struct {
	generator *fakeGenerator
	sender    *fakeSender
	reader    *fakeNewsletterReader
	clients   *fakeClientReader
	sources   *fakeSourceReader
	content   *fakeContentFetcher
	mailer    *fakeMailer
}

func newTestRouter(deps routerDeps) http.Handler {
	if deps.generator == nil {
		deps.generator = &fakeGenerator{}
	}
	if deps.sender == nil {
		deps.sender = &fakeSender{}
	}
	if deps.reader == nil {
		deps.reader = &fakeNewsletterReader{}
	}
	if deps.clients == nil {
		deps.clients = &fakeClientReader{}
	}
	if deps.sources == nil {
		deps.sources = &fakeSourceReader{}
	}
	if deps.content == nil {
		deps.content = &fakeContentFetcher{}
	}
	if deps.mailer == nil {
		deps.mailer = &fakeMailer{}
	}
	r := api.NewRouter(
		deps.generator, deps.sender, deps.reader, deps.clients,
		deps.sources, deps.content, deps.mailer,
		nil, nil, nil, false,
	)
	return r.SetupRoutes()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, user string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAPIRequiresUserHeader(t *testing.T) {
	handler := newTestRouter(routerDeps{})

	rec := doJSON(t, handler, http.MethodGet, "/api/newsletters", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without X-User-ID", rec.Code)
	}
}

func TestGenerateDraft(t *testing.T) {
	gen := &fakeGenerator{newsletter: &domain.Newsletter{ID: uuid.New(), Title: "Weekly Pulse"}}
	handler := newTestRouter(routerDeps{generator: gen})

	rec := doJSON(t, handler, http.MethodPost, "/api/generate-draft",
		map[string]string{"title": "Weekly Pulse"}, "user-1")

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if gen.gotUser != "user-1" || gen.gotTitle != "Weekly Pulse" {
		t.Errorf("generator called with (%q, %q)", gen.gotUser, gen.gotTitle)
	}
}

func TestGenerateDraft_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no active sources", domain.ErrNoActiveSources, http.StatusBadRequest},
		{"no content", domain.ErrNoContent, http.StatusNotFound},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(routerDeps{generator: &fakeGenerator{err: tc.err}})

			rec := doJSON(t, handler, http.MethodPost, "/api/generate-draft", nil, "user-1")
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRegenerateDraft(t *testing.T) {
	id := uuid.New()
	gen := &fakeGenerator{newsletter: &domain.Newsletter{ID: id, Title: "Weekly Pulse"}}
	handler := newTestRouter(routerDeps{generator: gen})

	rec := doJSON(t, handler, http.MethodPost, "/api/newsletters/"+id.String()+"/regenerate", nil, "user-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if gen.gotUser != "user-1" {
		t.Errorf("generator called with user %q", gen.gotUser)
	}
}

func TestRegenerateDraft_NotDraft(t *testing.T) {
	handler := newTestRouter(routerDeps{generator: &fakeGenerator{err: domain.ErrNotFound}})

	rec := doJSON(t, handler, http.MethodPost,
		"/api/newsletters/"+uuid.New().String()+"/regenerate", nil, "user-1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when the newsletter is not a regenerable draft", rec.Code)
	}
}

func TestSendNewsletter(t *testing.T) {
	sender := &fakeSender{outcome: &delivery.SendOutcome{
		Result: &domain.DeliveryResult{Success: true, SentCount: 2},
	}}
	handler := newTestRouter(routerDeps{sender: sender})

	rec := doJSON(t, handler, http.MethodPost, "/api/send-newsletter", map[string]any{
		"newsletter_id":    uuid.New().String(),
		"client_ids":       []string{uuid.New().String()},
		"send_immediately": true,
	}, "user-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !sender.gotReq.SendImmediately || sender.gotReq.UserID != "user-1" {
		t.Errorf("sender called with %+v", sender.gotReq)
	}
}

func TestSendNewsletter_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"already sent", delivery.ErrAlreadySent, http.StatusBadRequest},
		{"claim lost", delivery.ErrSendInProgress, http.StatusConflict},
		{"missing schedule time", domain.ErrMissingScheduleTime, http.StatusBadRequest},
		{"bad schedule format", domain.ErrInvalidScheduleFormat, http.StatusBadRequest},
		{"unknown newsletter", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(routerDeps{sender: &fakeSender{err: tc.err}})

			rec := doJSON(t, handler, http.MethodPost, "/api/send-newsletter", map[string]any{
				"newsletter_id": uuid.New().String(),
			}, "user-1")
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestSendNewsletter_MissingNewsletterID(t *testing.T) {
	handler := newTestRouter(routerDeps{})

	rec := doJSON(t, handler, http.MethodPost, "/api/send-newsletter", map[string]any{}, "user-1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing newsletter_id", rec.Code)
	}
}

func TestGetSourceContent(t *testing.T) {
	src := &domain.Source{ID: uuid.New(), SourceName: "The Go Blog"}
	handler := newTestRouter(routerDeps{
		sources: &fakeSourceReader{owned: src},
		content: &fakeContentFetcher{items: []domain.Item{{Title: "post", URL: "https://a.test"}}},
	})

	rec := doJSON(t, handler, http.MethodGet, "/api/sources/"+src.ID.String()+"/content", nil, "user-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []domain.Item `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("items = %d, want 1", len(resp.Items))
	}
}

func TestGetSourceContent_BadID(t *testing.T) {
	handler := newTestRouter(routerDeps{})

	rec := doJSON(t, handler, http.MethodGet, "/api/sources/not-a-uuid/content", nil, "user-1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed id", rec.Code)
	}
}

func TestGetSourceContent_ForeignSource(t *testing.T) {
	handler := newTestRouter(routerDeps{sources: &fakeSourceReader{}})

	rec := doJSON(t, handler, http.MethodGet, "/api/sources/"+uuid.New().String()+"/content", nil, "user-1")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a source the user does not own", rec.Code)
	}
}

func TestTestEmail(t *testing.T) {
	m := &fakeMailer{}
	handler := newTestRouter(routerDeps{mailer: m})

	rec := doJSON(t, handler, http.MethodPost, "/api/test-email",
		map[string]string{"email": "me@example.test"}, "user-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(m.sent) != 1 || m.sent[0] != "me@example.test" {
		t.Errorf("mailer sent to %v", m.sent)
	}
}

func TestTestEmail_InvalidAddress(t *testing.T) {
	handler := newTestRouter(routerDeps{})

	rec := doJSON(t, handler, http.MethodPost, "/api/test-email",
		map[string]string{"email": "not-an-address"}, "user-1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid email", rec.Code)
	}
}

func TestHealthWithoutBackends(t *testing.T) {
	handler := newTestRouter(routerDeps{})

	rec := doJSON(t, handler, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded with no database", resp["status"])
	}
}
