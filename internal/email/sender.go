// Package email delivers transactional mail to sales agents.
package email

import (
	"context"
	"fmt"

	"leadintake_backend/platform/config"
)

// Sender sends agent-facing emails.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, agentName, leadName, leadEmail, leadPhone, leadLocation string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NewSender returns the configured sender, or a NoopSender when email
// delivery is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	if cfg.GetSMTPHost() == "" || cfg.GetEmailFromAddress() == "" {
		return nil, fmt.Errorf("email enabled but SMTP_HOST or EMAIL_FROM_ADDRESS is missing")
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// NoopSender satisfies Sender without delivering anything. Used when
// email is disabled in the environment.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(ctx context.Context, toEmail, agentName, leadName, leadEmail, leadPhone, leadLocation string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}
