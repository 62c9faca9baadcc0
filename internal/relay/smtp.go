package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/manojvamsi/portfolio/internal/config"
	"github.com/manojvamsi/portfolio/internal/contact"
)

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP delivers contact messages straight to a mailbox. It uses its own
// account settings and ignores the relay credentials passed to Send.
type SMTP struct {
	cfg      config.SMTPConfig
	logger   zerolog.Logger
	sendMail sendMailFunc
}

// NewSMTP returns an SMTP relay for cfg.
func NewSMTP(cfg config.SMTPConfig, logger zerolog.Logger) *SMTP {
	return &SMTP{
		cfg:      cfg,
		logger:   logger.With().Str("relay", "smtp").Logger(),
		sendMail: smtp.SendMail,
	}
}

// Send composes a plain text message and hands it to the SMTP server.
func (s *SMTP) Send(ctx context.Context, _ contact.Credentials, fields contact.Fields) error {
	if s.cfg.User == "" || s.cfg.Pass == "" {
		return fmt.Errorf("%w: SMTP credentials not configured", ErrUnauthorized)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := s.cfg.ToEmail
	if to == "" {
		to = s.cfg.User
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.User, []string{to}, composeMessage(s.cfg.User, to, fields)); err != nil {
		return classifySMTP(err)
	}

	s.logger.Info().Str("to", to).Msg("contact email sent")
	return nil
}

func composeMessage(from, to string, fields contact.Fields) []byte {
	subject := "Portfolio Contact: " + fields.Name
	if strings.TrimSpace(fields.Subject) != "" {
		subject = fields.Subject
	}

	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, fields.Name, fields.Email, fields.Subject, fields.Message)

	var b strings.Builder
	b.WriteString("To: " + headerValue(to) + "\r\n")
	b.WriteString("Subject: " + headerValue(subject) + "\r\n")
	b.WriteString("From: " + headerValue(from) + "\r\n")
	b.WriteString("Reply-To: " + headerValue(fields.Email) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

// headerValue strips line breaks so visitor input cannot add headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(v))
}

func classifySMTP(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "535"), strings.HasPrefix(msg, "534"), strings.HasPrefix(msg, "530"):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case strings.HasPrefix(msg, "421"), strings.HasPrefix(msg, "450"), strings.HasPrefix(msg, "451"), strings.HasPrefix(msg, "452"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case strings.HasPrefix(msg, "5"):
		return fmt.Errorf("%w: %v", ErrRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}
