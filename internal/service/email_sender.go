package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/spec-kit/support-desk/internal/config"
)

// SendGridSender sends notification emails through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg config.NotificationConfig) *SendGridSender {
	if cfg.SendGridAPIKey == "" {
		return nil
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.EmailFromName, cfg.EmailFrom),
	}
}

func (s *SendGridSender) Send(ctx context.Context, toName, toEmail, subject, body string) error {
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), body, "")
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
