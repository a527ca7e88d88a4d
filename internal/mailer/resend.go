package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
)

const defaultResendURL = "https://api.resend.com"

// Email is one transactional message.
type Email struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}

// Resend sends transactional email through the Resend API.
type Resend struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewResend creates a client. baseURL may be empty for the public API.
func NewResend(baseURL, apiKey string) *Resend {
	if baseURL == "" {
		baseURL = defaultResendURL
	}
	return &Resend{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Send delivers one email.
func (c *Resend) Send(ctx context.Context, msg Email) error {
	payload := map[string]any{
		"from":    fmt.Sprintf("%s <%s>", msg.FromName, msg.From),
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: Resend %d", apperr.ErrUpstream, resp.StatusCode)
	}
	return nil
}
