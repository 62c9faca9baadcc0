package relay

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/manojvamsi/portfolio/internal/config"
	"github.com/manojvamsi/portfolio/internal/contact"
)

// New builds the relay selected by cfg.Provider together with the
// credentials the contact flow passes on every send.
func New(cfg config.RelayConfig, logger zerolog.Logger) (contact.Relay, contact.Credentials, error) {
	switch cfg.Provider {
	case config.ProviderEmailJS:
		creds := contact.Credentials{
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			AccessKey:  cfg.EmailJS.PublicKey,
		}
		client := NewEmailJS(logger, cfg.Timeout,
			WithEndpoint(cfg.EmailJS.Endpoint),
			WithPrivateKey(cfg.EmailJS.PrivateKey),
		)
		return client, creds, nil
	case config.ProviderSMTP:
		return NewSMTP(cfg.SMTP, logger), contact.Credentials{ServiceID: "smtp"}, nil
	case config.ProviderLog, "":
		return NewLog(logger), contact.Credentials{ServiceID: "log"}, nil
	default:
		return nil, contact.Credentials{}, fmt.Errorf("relay: unknown provider %q", cfg.Provider)
	}
}
