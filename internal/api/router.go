package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router with the admin dispatch endpoint and the
// public form endpoints mounted. The admin endpoint is guarded by the
// bearer secret; the public endpoints are open but only accept POST.
func NewRouter(h *Handler, adminSecret string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	// Single admin dispatch endpoint; the action is a query parameter.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(adminSecret))
		r.HandleFunc("/api/admin", h.Admin)
	})

	// Public form endpoints.
	r.Post("/api/subscribe", h.Subscribe)
	r.Post("/api/contact", h.Contact)
	r.Post("/api/freebie", h.Freebie)

	// Probes.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
