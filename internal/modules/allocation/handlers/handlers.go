// Package handlers provides HTTP handlers for investment strategy and
// allocation targets.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/modules/allocation"
)

// Handler handles allocation HTTP requests
type Handler struct {
	service *allocation.Service
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service *allocation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// HandleGetStrategy handles GET /api/users/{userID}/strategy
func (h *Handler) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	strategy, err := h.service.BuildStrategy(r.Context(), userID)
	if err != nil {
		h.profileError(w, userID, err, "Failed to build strategy")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(strategy))
}

// HandleGetTarget handles GET /api/users/{userID}/strategy/target
func (h *Handler) HandleGetTarget(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	target, err := h.service.Target(userID)
	if err != nil {
		h.profileError(w, userID, err, "Failed to compute target allocation")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"target": target,
		"total":  target.Sum(),
	}))
}

// HandleGetProfile handles GET /api/users/{userID}/strategy/profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := h.service.GetProfile(userID)
	if err != nil {
		h.profileError(w, userID, err, "Failed to get investor profile")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(profile))
}

// HandlePutProfile handles PUT /api/users/{userID}/strategy/profile
func (h *Handler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req allocation.InvestorProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.service.SaveProfile(userID, req)
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidProfile) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to save investor profile")
		h.writeError(w, http.StatusInternalServerError, "Failed to save investor profile")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(profile))
}

// HandleListGoals handles GET /api/users/{userID}/strategy/goals
func (h *Handler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	goals, err := h.service.ListGoals(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to list goals")
		h.writeError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	}))
}

// HandleCreateGoal handles POST /api/users/{userID}/strategy/goals
func (h *Handler) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req allocation.InvestmentGoal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := h.service.AddGoal(userID, req)
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidGoal) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to create goal")
		h.writeError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}
	h.writeJSON(w, http.StatusCreated, envelope(goal))
}

// HandleDeleteGoal handles DELETE /api/users/{userID}/strategy/goals/{goalID}
func (h *Handler) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	goalID := chi.URLParam(r, "goalID")

	if err := h.service.DeleteGoal(userID, goalID); err != nil {
		if errors.Is(err, allocation.ErrGoalNotFound) {
			h.writeError(w, http.StatusNotFound, "Goal not found")
			return
		}
		h.log.Error().Err(err).Str("user", userID).Str("goal", goalID).Msg("Failed to delete goal")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) profileError(w http.ResponseWriter, userID string, err error, message string) {
	if errors.Is(err, allocation.ErrProfileNotFound) {
		h.writeError(w, http.StatusNotFound, "Investor profile not found")
		return
	}
	h.log.Error().Err(err).Str("user", userID).Msg(message)
	h.writeError(w, http.StatusInternalServerError, message)
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
