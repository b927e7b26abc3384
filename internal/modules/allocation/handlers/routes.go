package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all strategy routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}/strategy", func(r chi.Router) {
		r.Get("/", h.HandleGetStrategy)    // Target, current split and recommendations
		r.Get("/target", h.HandleGetTarget) // Target split only

		r.Get("/profile", h.HandleGetProfile)
		r.Put("/profile", h.HandlePutProfile)

		r.Get("/goals", h.HandleListGoals)
		r.Post("/goals", h.HandleCreateGoal)
		r.Delete("/goals/{goalID}", h.HandleDeleteGoal)
	})
}
