package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/manojvamsi/portfolio/internal/contact"
)

// DefaultEmailJSEndpoint is the EmailJS REST send endpoint.
const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// maxErrorBody caps how much of an error response ends up in the error text.
const maxErrorBody = 512

// EmailJS delivers contact messages through the EmailJS REST API. The
// service, template and public key come from the contact.Credentials passed
// to Send.
type EmailJS struct {
	endpoint   string
	privateKey string
	client     *http.Client
	logger     zerolog.Logger
}

// EmailJSOption customizes an EmailJS client.
type EmailJSOption func(*EmailJS)

// WithEndpoint points the client at a different send URL.
func WithEndpoint(url string) EmailJSOption {
	return func(e *EmailJS) {
		if url != "" {
			e.endpoint = url
		}
	}
}

// WithPrivateKey sets the account access token EmailJS requires when the
// "use private key" option is enabled.
func WithPrivateKey(key string) EmailJSOption {
	return func(e *EmailJS) { e.privateKey = key }
}

// WithHTTPClient swaps the HTTP client.
func WithHTTPClient(client *http.Client) EmailJSOption {
	return func(e *EmailJS) {
		if client != nil {
			e.client = client
		}
	}
}

// NewEmailJS returns a client with the given request timeout. A zero timeout
// leaves requests bounded only by the caller's context.
func NewEmailJS(logger zerolog.Logger, timeout time.Duration, opts ...EmailJSOption) *EmailJS {
	e := &EmailJS{
		endpoint: DefaultEmailJSEndpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("relay", "emailjs").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts the four form fields as template parameters.
func (e *EmailJS) Send(ctx context.Context, creds contact.Credentials, fields contact.Fields) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:   creds.ServiceID,
		TemplateID:  creds.TemplateID,
		UserID:      creds.AccessKey,
		AccessToken: e.privateKey,
		TemplateParams: map[string]string{
			"name":    fields.Name,
			"email":   fields.Email,
			"subject": fields.Subject,
			"message": fields.Message,
		},
	})
	if err != nil {
		return fmt.Errorf("emailjs: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emailjs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		e.logger.Debug().Str("service_id", creds.ServiceID).Msg("emailjs accepted message")
		return nil
	}

	detail := strings.TrimSpace(string(msg))
	e.logger.Warn().Int("status", resp.StatusCode).Str("detail", detail).Msg("emailjs rejected message")
	return fmt.Errorf("%w: status %d: %s", classifyStatus(resp.StatusCode), resp.StatusCode, detail)
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 400 && code < 500:
		return ErrRejected
	default:
		return ErrUpstream
	}
}
