package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

const temporaryPasswordSubject = "Your temporary password"

// ResendMailer delivers recovery passwords through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendMailer creates a mailer sending from the given address.
func NewResendMailer(apiKey, from string, logger *zap.Logger) *ResendMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from, logger: logger}
}

// SendTemporaryPassword emails a freshly issued temporary password.
func (m *ResendMailer) SendTemporaryPassword(ctx context.Context, email, password string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email},
		Subject: temporaryPasswordSubject,
		Html:    "<p>Your temporary password is <strong>" + html.EscapeString(password) + "</strong>.</p>",
		Text:    "Your temporary password is " + password + ".",
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	m.logger.Info("temporary password sent", zap.String("message_id", sent.Id))
	return nil
}
