package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all recurring template routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/recurring", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Post("/materialize", h.HandleMaterialize)
		r.Get("/materialize/history", h.HandleHistory)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGet(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/pause", func(w http.ResponseWriter, r *http.Request) {
			h.HandlePause(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/resume", func(w http.ResponseWriter, r *http.Request) {
			h.HandleResume(w, r, chi.URLParam(r, "id"))
		})
	})
}
