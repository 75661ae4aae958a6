package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/kerbside-app/kerbside-backend/pkg/config"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText string) error
}

// SendgridMailer delivers mail through the SendGrid API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendgridMailer builds a mailer from config. Returns nil without error
// when no API key is configured, which disables notifications.
func NewSendgridMailer(cfg config.SendgridConfig) (*SendgridMailer, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from email is required")
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail("Kerbside", cfg.DefaultFrom),
	}, nil
}

// Send delivers the message, treating non-2xx API responses as errors.
func (m *SendgridMailer) Send(ctx context.Context, toEmail, toName, subject, plainText string) error {
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(m.from, subject, to, plainText, "")
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
