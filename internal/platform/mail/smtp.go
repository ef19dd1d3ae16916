// Package mail provides the outbound email adapters for password recovery.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"microblog_backend/internal/feature/auth/domain/entity"
)

// SMTPSender delivers password-reset links over SMTP.
type SMTPSender struct {
	addr     string // host:port
	auth     smtp.Auth
	from     string
	baseURL  string // external URL of this service, no trailing slash
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new SMTPSender instance.
// username may be empty for unauthenticated relays.
func NewSMTPSender(host, port, username, password, from, baseURL string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr:     host + ":" + port,
		auth:     auth,
		from:     from,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		sendMail: smtp.SendMail,
	}
}

// SendPasswordReset emails the reset link for the given token to the user.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, user *entity.User, token string) error {
	link := fmt.Sprintf("%s/reset_password/%s", s.baseURL, token)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", user.Email)
	b.WriteString("Subject: [Microblog] Reset Your Password\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Dear %s,\r\n\r\n", user.Username)
	fmt.Fprintf(&b, "To reset your password visit the following link:\r\n\r\n%s\r\n\r\n", link)
	b.WriteString("If you have not requested a password reset simply ignore this message.\r\n")

	if err := s.sendMail(s.addr, s.auth, s.from, []string{user.Email}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	slog.Info("password reset email sent", "user_id", user.ID, "email", user.Email)
	return nil
}

// Disabled is the notifier used when SMTP is not configured.
// It drops the mail and logs a warning, keeping the rest of the reset flow
// (and its anti-enumeration behavior) intact.
type Disabled struct{}

// SendPasswordReset logs the dropped notification.
func (Disabled) SendPasswordReset(ctx context.Context, user *entity.User, token string) error {
	slog.Warn("SMTP not configured, dropping password reset email", "user_id", user.ID)
	return nil
}
