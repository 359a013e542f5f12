// Package delivery resolves recipients and sends newsletters, driving the
// newsletter status machine.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/mailer"
	"github.com/jhawaritvik/CreatorPulse/internal/metrics"
)

// clientNamePlaceholder is replaced per recipient in the newsletter body.
const clientNamePlaceholder = "{{client_name}}"

var (
	// ErrAlreadySent is returned when a send targets a terminal newsletter.
	ErrAlreadySent = errors.New("newsletter already sent")

	// ErrSendInProgress is returned when another sender holds the claim.
	ErrSendInProgress = errors.New("newsletter send already in progress")
)

// NewsletterStore is the subset of newsletter persistence delivery needs.
type NewsletterStore interface {
	Create(ctx context.Context, userID, title, content string) (*domain.Newsletter, error)
	GetOwned(ctx context.Context, id uuid.UUID, userID string) (*domain.Newsletter, error)
	ClaimForSending(ctx context.Context, id uuid.UUID, from domain.Status) (bool, error)
	FinishSending(ctx context.Context, id uuid.UUID, final domain.Status) error
	Schedule(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RecipientStore manages newsletter recipient rows.
type RecipientStore interface {
	AddRecipients(ctx context.Context, newsletterID uuid.UUID, clientIDs []uuid.UUID) error
	ListUnsent(ctx context.Context, newsletterID uuid.UUID) ([]domain.Recipient, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ClientStore resolves client ownership.
type ClientStore interface {
	GetOwnedByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]domain.Client, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Client, error)
}

// Service orchestrates newsletter delivery.
type Service struct {
	newsletters NewsletterStore
	recipients  RecipientStore
	clients     ClientStore
	mailer      mailer.Mailer
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewService creates a delivery service. metrics may be nil.
func NewService(
	newsletters NewsletterStore,
	recipients RecipientStore,
	clients ClientStore,
	m mailer.Mailer,
	mx *metrics.Metrics,
	log logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{
		newsletters: newsletters,
		recipients:  recipients,
		clients:     clients,
		mailer:      m,
		metrics:     mx,
		logger:      log,
		now:         time.Now,
	}
}

// SendRequest is one user-triggered send or schedule operation.
type SendRequest struct {
	UserID          string
	NewsletterID    uuid.UUID
	ClientIDs       []uuid.UUID
	SendImmediately bool
	ScheduledTime   string
	TestMode        bool
}

// SendOutcome is the result of a Send call: either the newsletter was
// delivered now (Result set) or parked for the sweep (Scheduled set).
type SendOutcome struct {
	Scheduled     bool                   `json:"scheduled"`
	ScheduledTime *time.Time             `json:"scheduled_time,omitempty"`
	Result        *domain.DeliveryResult `json:"result,omitempty"`
}

// Send resolves recipients for a newsletter and either delivers it now or
// schedules it. A scheduled time in the past collapses to an immediate send.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendOutcome, error) {
	nl, err := s.newsletters.GetOwned(ctx, req.NewsletterID, req.UserID)
	if err != nil {
		return nil, err
	}
	if nl.IsTerminal() {
		return nil, ErrAlreadySent
	}

	if err := s.addOwnedRecipients(ctx, req.UserID, nl.ID, req.ClientIDs); err != nil {
		return nil, err
	}

	if req.SendImmediately {
		return s.sendNow(ctx, nl, req.TestMode)
	}

	if strings.TrimSpace(req.ScheduledTime) == "" {
		return nil, domain.ErrMissingScheduleTime
	}
	at, err := parseScheduledTime(req.ScheduledTime)
	if err != nil {
		return nil, err
	}

	if !at.After(s.now().UTC()) {
		s.logger.Info("scheduled time already due, sending immediately",
			logger.String("newsletter_id", nl.ID.String()),
			logger.Time("scheduled_time", at),
		)
		return s.sendNow(ctx, nl, req.TestMode)
	}

	if err := s.newsletters.Schedule(ctx, nl.ID, at); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrSendInProgress
		}
		return nil, err
	}

	s.logger.Info("newsletter scheduled",
		logger.String("newsletter_id", nl.ID.String()),
		logger.Time("scheduled_time", at),
	)
	return &SendOutcome{Scheduled: true, ScheduledTime: &at}, nil
}

// CreateAndSend creates a newsletter and delivers it to the given clients in
// one step.
func (s *Service) CreateAndSend(ctx context.Context, userID, title, content string, clientIDs []uuid.UUID, testMode bool) (*domain.DeliveryResult, error) {
	nl, err := s.newsletters.Create(ctx, userID, title, content)
	if err != nil {
		return nil, err
	}
	if err := s.addOwnedRecipients(ctx, userID, nl.ID, clientIDs); err != nil {
		return nil, err
	}

	outcome, err := s.sendNow(ctx, nl, testMode)
	if err != nil {
		return nil, err
	}
	return outcome.Result, nil
}

// addOwnedRecipients verifies client ownership and inserts the join rows.
// An empty clientIDs resolves to every client the user owns. Clients not
// owned by the user are dropped silently.
func (s *Service) addOwnedRecipients(ctx context.Context, userID string, newsletterID uuid.UUID, clientIDs []uuid.UUID) error {
	var (
		owned []domain.Client
		err   error
	)
	if len(clientIDs) == 0 {
		owned, err = s.clients.ListByUser(ctx, userID)
	} else {
		owned, err = s.clients.GetOwnedByIDs(ctx, userID, clientIDs)
	}
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		return domain.ErrNoRecipients
	}

	ids := make([]uuid.UUID, 0, len(owned))
	for _, c := range owned {
		ids = append(ids, c.ID)
	}
	return s.recipients.AddRecipients(ctx, newsletterID, ids)
}

// sendNow claims the newsletter, delivers it, and records the outcome. Losing
// the claim means another sender (or the sweep) has it.
func (s *Service) sendNow(ctx context.Context, nl *domain.Newsletter, testMode bool) (*SendOutcome, error) {
	claimed, err := s.newsletters.ClaimForSending(ctx, nl.ID, nl.Status)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrSendInProgress
	}

	result, err := s.Deliver(ctx, nl, testMode)
	if err != nil {
		return nil, err
	}
	return &SendOutcome{Result: result}, nil
}

// Deliver mails a claimed newsletter to its unsent recipients and finishes
// the status transition. Per-recipient failures are collected, never fatal.
func (s *Service) Deliver(ctx context.Context, nl *domain.Newsletter, testMode bool) (*domain.DeliveryResult, error) {
	recipients, err := s.recipients.ListUnsent(ctx, nl.ID)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		// Nothing to mail. Hand the claim back instead of finishing a
		// newsletter nobody received.
		if relErr := s.newsletters.FinishSending(ctx, nl.ID, nl.Status); relErr != nil {
			s.logger.Error("failed to restore status after empty recipient set",
				logger.String("newsletter_id", nl.ID.String()),
				logger.Error(relErr),
			)
		}
		return nil, domain.ErrNoRecipients
	}

	result := &domain.DeliveryResult{
		NewsletterID: nl.ID,
		TestMode:     testMode,
	}

	for _, r := range recipients {
		if r.ClientEmail == "" {
			// Not a failure: the client simply cannot be mailed yet.
			s.logger.Info("skipping recipient with no email on file",
				logger.String("newsletter_id", nl.ID.String()),
				logger.String("client", r.ClientName),
			)
			continue
		}

		if testMode {
			s.logger.Info("test mode, skipping real send",
				logger.String("newsletter_id", nl.ID.String()),
				logger.String("to", r.ClientEmail),
			)
			result.SentCount++
			continue
		}

		body := strings.ReplaceAll(nl.Content, clientNamePlaceholder, r.ClientName)
		if sendErr := s.mailer.Send(ctx, r.ClientEmail, nl.Title, body); sendErr != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("failed to send to %s: %v", r.ClientEmail, sendErr))
			if s.metrics != nil {
				s.metrics.EmailsFailed.Inc()
			}
			s.logger.Warn("recipient send failed",
				logger.String("newsletter_id", nl.ID.String()),
				logger.String("to", r.ClientEmail),
				logger.Error(sendErr),
			)
			continue
		}

		if markErr := s.recipients.MarkSent(ctx, r.ID, s.now().UTC()); markErr != nil {
			s.logger.Warn("failed to mark recipient sent",
				logger.String("recipient_id", r.ID.String()),
				logger.Error(markErr),
			)
		}
		result.SentCount++
		if s.metrics != nil {
			s.metrics.EmailsSent.Inc()
		}
	}

	result.Success = result.FailedCount == 0

	final := domain.StatusSent
	if result.FailedCount > 0 {
		final = domain.StatusPartiallySent
	}

	// Test mode leaves the row claimed-then-restored rather than terminal so a
	// real send can still happen.
	if testMode {
		if err := s.newsletters.FinishSending(ctx, nl.ID, domain.StatusDraft); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := s.newsletters.FinishSending(ctx, nl.ID, final); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.NewslettersSent.WithLabelValues(string(final)).Inc()
	}

	s.logger.Info("newsletter delivery finished",
		logger.String("newsletter_id", nl.ID.String()),
		logger.String("status", string(final)),
		logger.Int("sent", result.SentCount),
		logger.Int("failed", result.FailedCount),
	)
	return result, nil
}

// scheduledTimeLayouts are accepted schedule formats. Timestamps without an
// offset are interpreted as UTC.
var scheduledTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseScheduledTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range scheduledTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidScheduleFormat, raw)
}
