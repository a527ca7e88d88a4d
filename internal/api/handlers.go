package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
	"github.com/littlesmartgenius/sitekeeper/internal/content"
	"github.com/littlesmartgenius/sitekeeper/internal/health"
	"github.com/littlesmartgenius/sitekeeper/internal/mailer"
	"github.com/littlesmartgenius/sitekeeper/internal/seo"
	"github.com/littlesmartgenius/sitekeeper/internal/snapshot"
	"github.com/littlesmartgenius/sitekeeper/internal/workflow"
)

// adminActions is the dispatch table advertised on unknown actions.
var adminActions = []string{
	"articles", "delete", "health", "deep-scan", "stats", "topics",
	"save-keywords", "fix-seo", "push-instagram", "snapshots",
	"create-snapshot", "restore-snapshot", "delete-snapshot",
	"generate", "runs", "scan-tpt",
}

// Handler holds the admin API route handlers.
type Handler struct {
	content *content.Service
	health  *health.Engine
	seo     *seo.Scanner
	snaps   *snapshot.Manager
	flows   *workflow.Trigger
	mail    *mailer.Service
}

// NewHandler creates a new Handler.
func NewHandler(c *content.Service, h *health.Engine, s *seo.Scanner, sn *snapshot.Manager, f *workflow.Trigger, m *mailer.Service) *Handler {
	return &Handler{content: c, health: h, seo: s, snaps: sn, flows: f, mail: m}
}

// Admin handles every /api/admin request, dispatching on the action query
// parameter. All actions share one endpoint so the dashboard needs a single
// URL and a single bearer secret.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	action := q.Get("action")
	slug := q.Get("slug")

	switch action {
	case "articles":
		list, err := h.content.ListArticles(r.Context())
		h.respond(w, action, list, err)

	case "delete":
		if r.Method != http.MethodDelete && r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, errorBody("use DELETE or POST"))
			return
		}
		if slug == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("slug parameter required"))
			return
		}
		res, err := h.content.CascadeDelete(r.Context(), slug)
		h.respond(w, action, res, err)

	case "health":
		report, err := h.health.Check(r.Context())
		h.respond(w, action, report, err)

	case "deep-scan":
		report, err := h.seo.Scan(r.Context(), slug)
		h.respond(w, action, report, err)

	case "stats":
		stats, err := h.content.Stats(r.Context())
		h.respond(w, action, stats, err)

	case "topics":
		topics, err := h.content.Topics(r.Context())
		h.respond(w, action, topics, err)

	case "save-keywords":
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, errorBody("use POST"))
			return
		}
		var req struct {
			Keywords string `json:"keywords"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
		res, err := h.content.SaveKeywords(r.Context(), req.Keywords)
		h.respond(w, action, res, err)

	case "fix-seo":
		if slug == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("slug parameter required"))
			return
		}
		res, err := h.seo.Fix(r.Context(), slug)
		h.respond(w, action, res, err)

	case "push-instagram":
		if slug == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("slug parameter required"))
			return
		}
		res, err := h.content.PushInstagram(r.Context(), slug)
		h.respond(w, action, res, err)

	case "snapshots":
		list, err := h.snaps.List(r.Context())
		h.respond(w, action, list, err)

	case "create-snapshot":
		res, err := h.snaps.Create(r.Context(), q.Get("name"))
		h.respond(w, action, res, err)

	case "restore-snapshot":
		tag := q.Get("tag")
		if tag == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("tag parameter required"))
			return
		}
		res, err := h.snaps.Restore(r.Context(), tag)
		h.respond(w, action, res, err)

	case "delete-snapshot":
		tag := q.Get("tag")
		if tag == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("tag parameter required"))
			return
		}
		res, err := h.snaps.Delete(r.Context(), tag)
		h.respond(w, action, res, err)

	case "generate":
		typ := q.Get("type")
		if typ == "" {
			typ = workflow.ActionGenerateBatch
		}
		res, err := h.flows.Fire(r.Context(), typ, slug)
		h.respond(w, action, res, err)

	case "runs":
		runs, err := h.flows.Runs(r.Context())
		h.respond(w, action, runs, err)

	case "scan-tpt":
		res, err := h.flows.FireScan(r.Context())
		h.respond(w, action, res, err)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "unknown action",
			"available": adminActions,
		})
	}
}

// respond writes the outcome of a service call using the shared sentinel
// to status mapping.
func (h *Handler) respond(w http.ResponseWriter, action string, v any, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal error"
		switch {
		case errors.Is(err, apperr.ErrInvalidRequest):
			status, msg = http.StatusBadRequest, err.Error()
		case errors.Is(err, apperr.ErrNotFound):
			status, msg = http.StatusNotFound, err.Error()
		case errors.Is(err, apperr.ErrConflict):
			status, msg = http.StatusConflict, err.Error()
		case errors.Is(err, apperr.ErrUpstream):
			status, msg = http.StatusBadGateway, "content store unavailable"
		}
		if status >= http.StatusInternalServerError {
			slog.Error("admin action failed", slog.String("action", action), slog.String("error", err.Error()))
		} else {
			slog.Warn("admin action rejected", slog.String("action", action), slog.String("error", err.Error()))
		}
		writeJSON(w, status, errorBody(msg))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
