package relay

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/manojvamsi/portfolio/internal/contact"
)

// Log is a development relay that writes submissions to the log and always
// succeeds.
type Log struct {
	logger zerolog.Logger
}

// NewLog constructs a logging relay.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("relay", "log").Logger()}
}

// Send logs the submission and returns nil.
func (l *Log) Send(ctx context.Context, creds contact.Credentials, fields contact.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Info().
		Str("service_id", creds.ServiceID).
		Str("template_id", creds.TemplateID).
		Str("name", fields.Name).
		Str("email", fields.Email).
		Str("subject", fields.Subject).
		Int("message_len", len(fields.Message)).
		Msg("contact message delivered to log")
	return nil
}
