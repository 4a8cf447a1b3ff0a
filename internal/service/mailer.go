package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Email is a transactional message addressed to one account.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer is a basic provider that logs emails instead of delivering them.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

// Send logs the email and returns nil to indicate success.
func (l *LogMailer) Send(ctx context.Context, email Email) error {
	l.logger.Info().Str("to", maskEmailAddress(email.To)).Str("subject", email.Subject).Msg("email handed to log mailer")
	return nil
}

func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}
