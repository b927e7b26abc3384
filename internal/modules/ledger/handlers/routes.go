package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}/transactions", func(r chi.Router) {
		r.Get("/", h.HandleGetTransactions)
		r.Get("/{id}", h.HandleGetTransaction)
	})

	r.Route("/users/{userID}/capital", func(r chi.Router) {
		r.Get("/", h.HandleGetCapital)
		r.Get("/daily", h.HandleGetDailyCapital)
	})
}
