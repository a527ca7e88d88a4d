package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
)

var igImagePattern = regexp.MustCompile(`(?i)\.(jpg|png|webp)$`)

// PushInstagram hands an article's prepared social asset (image + caption)
// to the automation webhook that performs the actual posting. With no
// webhook configured the assembled payload is returned unsent so the
// operator can post manually.
func (s *Service) PushInstagram(ctx context.Context, slug string) (*InstagramPush, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: missing slug", apperr.ErrInvalidRequest)
	}

	entries, err := s.store.ListDir(ctx, InstagramDir)
	if err != nil {
		return nil, err
	}
	var imageName, captionName string
	matched := false
	for _, e := range entries {
		if !BelongsTo(e.Name, slug) {
			continue
		}
		matched = true
		switch {
		case imageName == "" && igImagePattern.MatchString(e.Name):
			imageName = e.Name
		case captionName == "" && strings.HasSuffix(e.Name, ".txt"):
			captionName = e.Name
		}
	}
	if !matched {
		return nil, fmt.Errorf("no instagram files for %s: %w", slug, apperr.ErrNotFound)
	}
	if imageName == "" {
		return nil, fmt.Errorf("no instagram image for %s: %w", slug, apperr.ErrNotFound)
	}

	push := &InstagramPush{
		Slug:     slug,
		ImageURL: s.store.RawContentURL(InstagramDir + "/" + imageName),
	}
	caption := ""
	if captionName != "" {
		if file, ok, _ := s.store.GetFile(ctx, InstagramDir+"/"+captionName); ok {
			caption = file.Content
		}
	}
	// The webhook gets the full caption; the response echoes a preview.
	push.Caption = caption
	if len(push.Caption) > 200 {
		push.Caption = push.Caption[:200]
	}

	if s.webhookURL == "" {
		push.Message = "No automation webhook configured."
		return push, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"action":   "instagram-post",
		"slug":     slug,
		"imageUrl": push.ImageURL,
		"caption":  caption,
		"siteUrl":  fmt.Sprintf("%s/%s/%s.html", s.siteURL, PagesDir, slug),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	push.WebhookStatus = resp.StatusCode
	push.Sent = resp.StatusCode >= 200 && resp.StatusCode < 300
	if push.Sent {
		push.Message = "Instagram post handed to automation."
	} else {
		push.Message = fmt.Sprintf("Webhook error: %d", resp.StatusCode)
	}
	return push, nil
}
