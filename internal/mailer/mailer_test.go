package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhawaritvik/CreatorPulse/internal/config"
)

func testMailer() *SMTPMailer {
	return NewSMTPMailer(config.SMTPConfig{
		Host:      "smtp.example.test",
		Port:      587,
		Username:  "newsletters@example.test",
		Password:  "secret",
		FromEmail: "newsletters@example.test",
		FromName:  "CreatorPulse",
	}, nil)
}

func TestBuildMessage(t *testing.T) {
	m := testMailer()

	msg := string(m.buildMessage("client@acme.test", "Weekly Pulse", "<html><body>hi</body></html>"))
	lines := strings.Split(msg, "\r\n")
	require.GreaterOrEqual(t, len(lines), 6)

	assert.Equal(t, "From: CreatorPulse <newsletters@example.test>", lines[0])
	assert.Equal(t, "To: client@acme.test", lines[1])
	assert.Equal(t, "Subject: Weekly Pulse", lines[2])
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"utf-8\"")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<html><body>hi</body></html>"),
		"body must follow a blank line")
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	m := testMailer()

	msg := string(m.buildMessage("client@acme.test", "Résumé hebdomadaire", "<html></html>"))

	subject := ""
	for _, line := range strings.Split(msg, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subject = line
			break
		}
	}
	require.NotEmpty(t, subject)
	assert.Contains(t, subject, "=?utf-8?", "non-ASCII subject must be MIME-encoded")
}

func TestSend_CancelledContext(t *testing.T) {
	m := testMailer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, "client@acme.test", "Weekly Pulse", "<html></html>")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
