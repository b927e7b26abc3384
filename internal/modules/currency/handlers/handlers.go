// Package handlers provides HTTP handlers for currency operations.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// RateSource supplies exchange rates between bookkeeping currencies.
type RateSource interface {
	GetRate(ctx context.Context, from, to domain.Currency) (float64, error)
}

// Handler handles currency HTTP requests
type Handler struct {
	rates RateSource
	log   zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(rates RateSource, log zerolog.Logger) *Handler {
	return &Handler{
		rates: rates,
		log:   log.With().Str("handler", "currency").Logger(),
	}
}

// ConvertRequest represents a request to convert currency
type ConvertRequest struct {
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Amount       float64 `json:"amount"`
}

// HandleGetRate handles GET /api/currency/rates/{from}/{to}
func (h *Handler) HandleGetRate(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.pair(w, chi.URLParam(r, "from"), chi.URLParam(r, "to"))
	if !ok {
		return
	}

	rate, err := h.rate(r.Context(), from, to)
	if err != nil {
		h.log.Warn().Err(err).Str("from", string(from)).Str("to", string(to)).Msg("Failed to get exchange rate")
		h.writeError(w, http.StatusBadGateway, "exchange rate not available")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"from_currency": from,
		"to_currency":   to,
		"rate":          rate,
	}))
}

// HandleConvert handles POST /api/currency/convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, to, ok := h.pair(w, req.FromCurrency, req.ToCurrency)
	if !ok {
		return
	}
	if !utils.IsFinite(req.Amount) || req.Amount <= 0 {
		h.writeError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}

	rate, err := h.rate(r.Context(), from, to)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get exchange rate")
		h.writeError(w, http.StatusBadGateway, "exchange rate not available")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"from_currency": from,
		"to_currency":   to,
		"from_amount":   req.Amount,
		"to_amount":     utils.Round(req.Amount*rate, 2),
		"rate":          rate,
	}))
}

// HandleGetAvailableCurrencies handles GET /api/currency/available-currencies
func (h *Handler) HandleGetAvailableCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies := []map[string]interface{}{
		{"code": domain.CurrencyARS, "name": "Peso argentino", "symbol": "$"},
		{"code": domain.CurrencyUSD, "name": "US Dollar", "symbol": "US$"},
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"currencies": currencies,
		"count":      len(currencies),
	}))
}

func (h *Handler) pair(w http.ResponseWriter, rawFrom, rawTo string) (domain.Currency, domain.Currency, bool) {
	from, err := domain.ParseCurrency(rawFrom)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	to, err := domain.ParseCurrency(rawTo)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return from, to, true
}

func (h *Handler) rate(ctx context.Context, from, to domain.Currency) (float64, error) {
	if from == to {
		return 1, nil
	}
	return h.rates.GetRate(ctx, from, to)
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

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
