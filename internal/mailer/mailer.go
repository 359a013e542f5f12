// Package mailer sends newsletter email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/config"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
)

// Mailer delivers a single HTML email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a single SMTP relay using PLAIN auth over
// STARTTLS (the submission port 587 path).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	fromAddr string
	fromName string
	logger   logger.Logger
}

// NewSMTPMailer creates a mailer from config.
func NewSMTPMailer(cfg config.SMTPConfig, log logger.Logger) *SMTPMailer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		fromAddr: cfg.FromEmail,
		fromName: cfg.FromName,
		logger:   log,
	}
}

// Send delivers one message. The context only bounds the call coarsely:
// net/smtp has no per-operation deadline hooks, so cancellation is checked
// before dialing.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send aborted: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	msg := m.buildMessage(to, subject, htmlBody)

	start := time.Now()
	if err := smtp.SendMail(addr, auth, m.fromAddr, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	m.logger.Debug("email sent",
		logger.String("to", to),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// buildMessage assembles an RFC 5322 message with an HTML body.
func (m *SMTPMailer) buildMessage(to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", m.fromName), m.fromAddr))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
