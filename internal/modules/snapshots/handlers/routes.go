package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers snapshot routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}/snapshots", func(r chi.Router) {
		r.Get("/", h.HandleGetHistory)
		r.Post("/", h.HandleTakeSnapshot)
		r.Get("/latest", h.HandleGetLatest)
		r.Get("/trend", h.HandleGetTrend)     // moving average of total value
		r.Get("/summary", h.HandleGetSummary) // descriptive statistics
		r.Get("/export", h.HandleExport)      // msgpack download
		r.Post("/normalize", h.HandleNormalize)
	})
}
