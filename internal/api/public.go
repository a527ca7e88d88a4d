package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
	"github.com/littlesmartgenius/sitekeeper/internal/mailer"
)

// Subscribe handles POST /api/subscribe.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.mail.Subscribe(r.Context(), req.Email, req.Name)
	h.respondPublic(w, "subscribe", res, err)
}

// Contact handles POST /api/contact.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req mailer.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.mail.Contact(r.Context(), req)
	h.respondPublic(w, "contact", res, err)
}

// Freebie handles POST /api/freebie.
func (h *Handler) Freebie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Product string `json:"product"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.mail.SendFreebie(r.Context(), req.Email, req.Product)
	h.respondPublic(w, "freebie", res, err)
}

func (h *Handler) respondPublic(w http.ResponseWriter, flow string, res *mailer.FlowResult, err error) {
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidRequest):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		default:
			slog.Error("public flow failed", slog.String("flow", flow), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}
