package content

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
)

func TestPushInstagramNoWebhook(t *testing.T) {
	store := newFakeStore()
	store.files["instagram/maze.jpg"] = "binary"
	store.files["instagram/maze.txt"] = "A-maze-ing printable for kids!"

	svc := NewService(store, "https://example.com", "")
	push, err := svc.PushInstagram(context.Background(), "maze")
	if err != nil {
		t.Fatalf("PushInstagram: %v", err)
	}
	if push.Sent {
		t.Error("sent without a webhook")
	}
	if push.Caption != "A-maze-ing printable for kids!" {
		t.Errorf("caption = %q", push.Caption)
	}
	if !strings.HasSuffix(push.ImageURL, "instagram/maze.jpg") {
		t.Errorf("imageUrl = %q", push.ImageURL)
	}
}

func TestPushInstagramWebhook(t *testing.T) {
	var got map[string]string
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	caption := strings.Repeat("long caption ", 30)
	store := newFakeStore()
	store.files["instagram/maze.jpg"] = "binary"
	store.files["instagram/maze.txt"] = caption

	svc := NewService(store, "https://example.com", webhook.URL)
	push, err := svc.PushInstagram(context.Background(), "maze")
	if err != nil {
		t.Fatalf("PushInstagram: %v", err)
	}
	if !push.Sent || push.WebhookStatus != http.StatusOK {
		t.Fatalf("push = %+v", push)
	}
	if got["action"] != "instagram-post" || got["slug"] != "maze" {
		t.Errorf("payload = %v", got)
	}
	if got["caption"] != caption {
		t.Errorf("webhook caption truncated: %d chars, want %d", len(got["caption"]), len(caption))
	}
	if len(push.Caption) != 200 {
		t.Errorf("response caption = %d chars, want 200", len(push.Caption))
	}
	if got["siteUrl"] != "https://example.com/articles/maze.html" {
		t.Errorf("siteUrl = %q", got["siteUrl"])
	}
}

func TestPushInstagramWebhookError(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer webhook.Close()

	store := newFakeStore()
	store.files["instagram/maze.jpg"] = "binary"

	svc := NewService(store, "https://example.com", webhook.URL)
	push, err := svc.PushInstagram(context.Background(), "maze")
	if err != nil {
		t.Fatalf("PushInstagram: %v", err)
	}
	if push.Sent {
		t.Error("sent despite webhook failure")
	}
	if push.WebhookStatus != http.StatusBadGateway {
		t.Errorf("webhookStatus = %d", push.WebhookStatus)
	}
}

func TestPushInstagramMissingAssets(t *testing.T) {
	svc := NewService(newFakeStore(), "https://example.com", "")
	_, err := svc.PushInstagram(context.Background(), "maze")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	store := newFakeStore()
	store.files["instagram/maze.txt"] = "caption only"
	svc = NewService(store, "https://example.com", "")
	_, err = svc.PushInstagram(context.Background(), "maze")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for missing image", err)
	}
}
