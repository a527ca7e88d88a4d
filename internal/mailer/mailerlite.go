// Package mailer implements the public form flows: newsletter signup,
// contact messages and freebie delivery. It glues together MailerLite for
// list management and Resend for transactional email.
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

const defaultMailerLiteURL = "https://connect.mailerlite.com/api"

// MailerLite is a minimal client for the subscribers endpoint.
type MailerLite struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	groupID    string
}

// NewMailerLite creates a client. baseURL may be empty for the public API.
func NewMailerLite(baseURL, apiKey, groupID string) *MailerLite {
	if baseURL == "" {
		baseURL = defaultMailerLiteURL
	}
	return &MailerLite{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		groupID:    groupID,
	}
}

// Upsert adds or updates a subscriber in the configured group. already is
// true when the provider reports the address as existing (422), which the
// flows treat as success.
func (c *MailerLite) Upsert(ctx context.Context, email, name string, fields map[string]string) (already bool, err error) {
	payload := map[string]any{
		"email":  email,
		"groups": []string{c.groupID},
	}
	merged := map[string]string{}
	if name != "" {
		merged["name"] = name
	}
	for k, v := range fields {
		merged[k] = v
	}
	if len(merged) > 0 {
		payload["fields"] = merged
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscribers", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return false, nil
	case http.StatusUnprocessableEntity:
		return true, nil
	default:
		return false, fmt.Errorf("%w: MailerLite %d", apperr.ErrUpstream, resp.StatusCode)
	}
}
