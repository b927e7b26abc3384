// Package handlers provides HTTP handlers for daily portfolio snapshots.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/snapshots"
	"github.com/aristath/cartera/internal/utils"
)

const defaultTrendPeriod = 7

// Handler handles snapshot HTTP requests
type Handler struct {
	service *snapshots.Service
	now     func() time.Time
	log     zerolog.Logger
}

// NewHandler creates a new snapshots handler
func NewHandler(service *snapshots.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
		log:     log.With().Str("handler", "snapshots").Logger(),
	}
}

// SetClock replaces the time source. Used by tests.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// HandleGetHistory handles GET /api/users/{userID}/snapshots
// Optional query parameters: from, to (YYYY-MM-DD).
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	var (
		records []domain.DailyRecord
		err     error
	)
	if q.Get("from") != "" || q.Get("to") != "" {
		from, to, ok := h.parseRange(w, q.Get("from"), q.Get("to"))
		if !ok {
			return
		}
		records, err = h.service.HistoryBetween(userID, from, to)
	} else {
		records, err = h.service.History(userID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to load history")
		h.writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if records == nil {
		records = []domain.DailyRecord{}
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"records": records,
		"count":   len(records),
	}))
}

// HandleGetLatest handles GET /api/users/{userID}/snapshots/latest
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	records, err := h.service.History(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to load history")
		h.writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if len(records) == 0 {
		h.writeError(w, http.StatusNotFound, "No snapshots recorded")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(records[len(records)-1]))
}

// HandleTakeSnapshot handles POST /api/users/{userID}/snapshots?date=YYYY-MM-DD
// A snapshot values today's positions and cash, so date may only name today.
func (h *Handler) HandleTakeSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	asOf := h.now().UTC()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := utils.ParseDate(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		if !d.Equal(utils.TruncateToDay(asOf)) {
			h.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Snapshots can only be taken for today (%s)", utils.FormatDate(asOf)))
			return
		}
	}

	rec, err := h.service.TakeSnapshot(r.Context(), userID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to take snapshot")
		h.writeError(w, http.StatusInternalServerError, "Failed to take snapshot")
		return
	}

	h.writeJSON(w, http.StatusCreated, envelope(rec))
}

// HandleNormalize handles POST /api/users/{userID}/snapshots/normalize?strategy=same_day|cumulative_diff
// The strategy is required.
func (h *Handler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	strategy, err := snapshots.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("strategy must be %s or %s", snapshots.StrategySameDay, snapshots.StrategyCumulativeDiff))
		return
	}

	result, err := h.service.Normalize(r.Context(), userID, strategy)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to normalize history")
		if result != nil {
			// Corrections are live in memory even though the write failed.
			h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":  "Failed to persist normalized history",
				"result": result,
			})
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to normalize history")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

// HandleGetTrend handles GET /api/users/{userID}/snapshots/trend?currency=ARS&period=7
func (h *Handler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	currency, ok := h.currency(w, r)
	if !ok {
		return
	}
	period := defaultTrendPeriod
	if s := r.URL.Query().Get("period"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 2 {
			h.writeError(w, http.StatusBadRequest, "period must be an integer of at least 2")
			return
		}
		period = p
	}

	records, err := h.service.History(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to load history")
		h.writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"currency": currency,
		"period":   period,
		"points":   snapshots.Trend(records, currency, period),
	}))
}

// HandleGetSummary handles GET /api/users/{userID}/snapshots/summary?currency=ARS
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	currency, ok := h.currency(w, r)
	if !ok {
		return
	}

	records, err := h.service.History(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to load history")
		h.writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(snapshots.Summarize(records, currency)))
}

// HandleExport handles GET /api/users/{userID}/snapshots/export
// The body is the msgpack-encoded history.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	data, err := h.service.Export(userID, time.Now())
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to export history")
		h.writeError(w, http.StatusInternalServerError, "Failed to export history")
		return
	}

	w.Header().Set("Content-Type", "application/msgpack")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", userID+"-history.msgpack"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to write export")
	}
}

func (h *Handler) currency(w http.ResponseWriter, r *http.Request) (domain.Currency, bool) {
	s := r.URL.Query().Get("currency")
	if s == "" {
		return domain.CurrencyARS, true
	}
	c, err := domain.ParseCurrency(s)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "currency must be ARS or USD")
		return "", false
	}
	return c, true
}

func (h *Handler) parseRange(w http.ResponseWriter, fromStr, toStr string) (time.Time, time.Time, bool) {
	from := time.Unix(0, 0).UTC()
	to := utils.TruncateToDay(time.Now().UTC())

	var err error
	if fromStr != "" {
		if from, err = utils.ParseDate(fromStr); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return from, to, false
		}
	}
	if toStr != "" {
		if to, err = utils.ParseDate(toStr); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return from, to, false
		}
	}
	if to.Before(from) {
		h.writeError(w, http.StatusBadRequest, "to must not precede from")
		return from, to, false
	}
	return from, to, true
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
