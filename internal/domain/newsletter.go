package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery state of a newsletter.
type Status string

const (
	// StatusDraft is a newsletter whose content may still be regenerated.
	StatusDraft Status = "draft"
	// StatusScheduled is a newsletter waiting for its scheduled send time.
	StatusScheduled Status = "scheduled"
	// StatusSending marks a newsletter claimed by exactly one send path.
	// The claim is a conditional transition so a user-triggered send and the
	// background sweep cannot both deliver the same newsletter.
	StatusSending Status = "sending"
	// StatusSent is terminal: every recipient received the newsletter.
	StatusSent Status = "sent"
	// StatusPartiallySent is terminal: at least one recipient failed.
	// Remaining unsent recipients stay eligible for a manual retry pass.
	StatusPartiallySent Status = "partially_sent"
)

// Newsletter is one generated report instance.
type Newsletter struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	UserID        string     `db:"user_id"        json:"user_id"`
	Title         string     `db:"title"          json:"title"`
	Content       string     `db:"content"        json:"content"`
	Status        Status     `db:"status"         json:"status"`
	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduled_time,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}

// IsTerminal reports whether the newsletter has reached a final state.
func (n *Newsletter) IsTerminal() bool {
	return n.Status == StatusSent || n.Status == StatusPartiallySent
}

// Client is an addressable entity a newsletter is delivered to, owned by a
// user.
type Client struct {
	ID     uuid.UUID `db:"id"      json:"id"`
	UserID string    `db:"user_id" json:"user_id"`
	Name   string    `db:"name"    json:"name"`
	Email  string    `db:"email"   json:"email"`
}

// Recipient is the newsletter/client join record. It is the unit of delivery
// idempotency: a delivery pass only considers rows with Sent == false.
type Recipient struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	NewsletterID uuid.UUID  `db:"newsletter_id" json:"newsletter_id"`
	ClientID     uuid.UUID  `db:"client_id"     json:"client_id"`
	Sent         bool       `db:"sent"          json:"sent"`
	SentAt       *time.Time `db:"sent_at"       json:"sent_at,omitempty"`

	// Joined from clients for the delivery loop.
	ClientName  string `db:"client_name"  json:"client_name,omitempty"`
	ClientEmail string `db:"client_email" json:"client_email,omitempty"`
}

// Source is a content source registered by a user.
type Source struct {
	ID               uuid.UUID `db:"id"                json:"id"`
	UserID           string    `db:"user_id"           json:"user_id"`
	SourceType       string    `db:"source_type"       json:"source_type"`
	SourceName       string    `db:"source_name"       json:"source_name"`
	SourceIdentifier string    `db:"source_identifier" json:"source_identifier"`
	Active           bool      `db:"active"            json:"active"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"        json:"updated_at"`
}

// Known source types.
const (
	SourceTypeRSS     = "rss"
	SourceTypeReddit  = "reddit"
	SourceTypeYouTube = "youtube"
	SourceTypeBlog    = "blog"
	SourceTypeOther   = "other"
)

// DeliveryResult summarizes one delivery operation.
type DeliveryResult struct {
	Success      bool      `json:"success"`
	NewsletterID uuid.UUID `json:"newsletter_id"`
	SentCount    int       `json:"sent_count"`
	FailedCount  int       `json:"failed_count"`
	Errors       []string  `json:"errors,omitempty"`
	TestMode     bool      `json:"test_mode"`
}
