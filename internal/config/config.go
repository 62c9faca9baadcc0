// Package config loads runtime settings from the environment, with an
// optional .env file layered underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Relay providers understood by relay.New.
const (
	ProviderEmailJS = "emailjs"
	ProviderSMTP    = "smtp"
	ProviderLog     = "log"
)

// Config captures all runtime configuration for the portfolio server.
type Config struct {
	App      AppConfig
	Relay    RelayConfig
	Sessions SessionConfig
	Store    StoreConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
	Port     string
	GinMode  string
}

// RelayConfig selects and configures the email relay behind the contact form.
type RelayConfig struct {
	Provider string
	Timeout  time.Duration
	EmailJS  EmailJSConfig
	SMTP     SMTPConfig
}

// EmailJSConfig holds the EmailJS account identifiers.
type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
}

// SMTPConfig holds the mailbox the contact form writes to.
type SMTPConfig struct {
	Host    string
	Port    string
	User    string
	Pass    string
	ToEmail string
}

// SessionConfig bounds the in-memory contact form sessions.
type SessionConfig struct {
	TTL      time.Duration
	Capacity int
}

// StoreConfig points at the visitor analytics database. An empty Path
// disables it.
type StoreConfig struct {
	Path string
}

var defaults = map[string]any{
	"APP_ENV":             "development",
	"LOG_LEVEL":           "info",
	"PORT":                "8080",
	"GIN_MODE":            "",
	"DB_PATH":             "portfolio.db",
	"RELAY_PROVIDER":      ProviderLog,
	"RELAY_TIMEOUT":       "10s",
	"EMAILJS_ENDPOINT":    "https://api.emailjs.com/api/v1.0/email/send",
	"EMAILJS_SERVICE_ID":  "",
	"EMAILJS_TEMPLATE_ID": "",
	"EMAILJS_PUBLIC_KEY":  "",
	"EMAILJS_PRIVATE_KEY": "",
	"SMTP_HOST":           "smtp.gmail.com",
	"SMTP_PORT":           "587",
	"SMTP_USER":           "",
	"SMTP_PASS":           "",
	"TO_EMAIL":            "",
	"SESSION_TTL":         "30m",
	"SESSION_CAPACITY":    1024,
}

// Load reads the optional .env files and the process environment. Values
// already present in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Port:     v.GetString("PORT"),
			GinMode:  v.GetString("GIN_MODE"),
		},
		Relay: RelayConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("RELAY_PROVIDER"))),
			Timeout:  v.GetDuration("RELAY_TIMEOUT"),
			EmailJS: EmailJSConfig{
				Endpoint:   v.GetString("EMAILJS_ENDPOINT"),
				ServiceID:  v.GetString("EMAILJS_SERVICE_ID"),
				TemplateID: v.GetString("EMAILJS_TEMPLATE_ID"),
				PublicKey:  v.GetString("EMAILJS_PUBLIC_KEY"),
				PrivateKey: v.GetString("EMAILJS_PRIVATE_KEY"),
			},
			SMTP: SMTPConfig{
				Host:    v.GetString("SMTP_HOST"),
				Port:    v.GetString("SMTP_PORT"),
				User:    v.GetString("SMTP_USER"),
				Pass:    v.GetString("SMTP_PASS"),
				ToEmail: v.GetString("TO_EMAIL"),
			},
		},
		Sessions: SessionConfig{
			TTL:      v.GetDuration("SESSION_TTL"),
			Capacity: v.GetInt("SESSION_CAPACITY"),
		},
		Store: StoreConfig{
			Path: v.GetString("DB_PATH"),
		},
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Relay.Provider {
	case ProviderLog, ProviderSMTP:
	case ProviderEmailJS:
		if c.Relay.EmailJS.ServiceID == "" || c.Relay.EmailJS.TemplateID == "" || c.Relay.EmailJS.PublicKey == "" {
			errs = append(errs, errors.New("EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID and EMAILJS_PUBLIC_KEY are required for the emailjs relay"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RELAY_PROVIDER %q", c.Relay.Provider))
	}
	if c.Relay.Timeout < 0 {
		errs = append(errs, errors.New("RELAY_TIMEOUT must not be negative"))
	}
	if c.Sessions.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Sessions.Capacity <= 0 {
		errs = append(errs, errors.New("SESSION_CAPACITY must be positive"))
	}
	if c.App.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the app runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development") || strings.EqualFold(c.App.Env, "dev")
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
