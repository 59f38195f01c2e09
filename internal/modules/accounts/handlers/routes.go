package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all account routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/balances", h.HandleBalances)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGet(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/{id}/transactions", func(w http.ResponseWriter, r *http.Request) {
			h.HandleTransactions(w, r, chi.URLParam(r, "id"))
		})
		r.Put("/{id}/active", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSetActive(w, r, chi.URLParam(r, "id"))
		})
	})
}
