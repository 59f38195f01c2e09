package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all reconciliation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reconciliation/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGet(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/{id}/candidates", func(w http.ResponseWriter, r *http.Request) {
			h.HandleCandidates(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/summary", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSummarize(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/quick-add", func(w http.ResponseWriter, r *http.Request) {
			h.HandleQuickAdd(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/finish", func(w http.ResponseWriter, r *http.Request) {
			h.HandleFinish(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			h.HandleCancel(w, r, chi.URLParam(r, "id"))
		})
	})
}
