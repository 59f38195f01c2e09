package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all enrollment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGet(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/payments", func(w http.ResponseWriter, r *http.Request) {
			h.HandleAddPayment(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/{id}/payments", func(w http.ResponseWriter, r *http.Request) {
			h.HandleListPayments(w, r, chi.URLParam(r, "id"))
		})
	})
}
