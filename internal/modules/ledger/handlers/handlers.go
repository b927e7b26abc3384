// Package handlers provides HTTP handlers for the transaction ledger and the
// invested-capital measures derived from it.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/capital"
	"github.com/aristath/cartera/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// TransactionReader is the read side of the ledger the handlers need.
type TransactionReader interface {
	List(userID string) (domain.TransactionList, error)
	ListBetween(userID string, from, to time.Time) (domain.TransactionList, error)
	ListByType(userID string, kind domain.TransactionType) (domain.TransactionList, error)
	GetByID(userID, id string) (domain.Transaction, error)
}

// Handler handles ledger HTTP requests
type Handler struct {
	transactions TransactionReader
	log          zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(transactions TransactionReader, log zerolog.Logger) *Handler {
	return &Handler{
		transactions: transactions,
		log:          log.With().Str("handler", "ledger").Logger(),
	}
}

// HandleGetTransactions handles GET /api/users/{userID}/transactions
// Optional query parameters: type, from, to (YYYY-MM-DD).
func (h *Handler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	var (
		txs domain.TransactionList
		err error
	)
	switch {
	case q.Get("type") != "":
		txs, err = h.transactions.ListByType(userID, domain.TransactionType(q.Get("type")))
	case q.Get("from") != "" || q.Get("to") != "":
		from, to, ok := h.parseRange(w, q.Get("from"), q.Get("to"))
		if !ok {
			return
		}
		txs, err = h.transactions.ListBetween(userID, from, to.Add(24*time.Hour-time.Second))
	default:
		txs, err = h.transactions.List(userID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to list transactions")
		h.writeError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	}))
}

// HandleGetTransaction handles GET /api/users/{userID}/transactions/{id}
func (h *Handler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	id := chi.URLParam(r, "id")

	tx, err := h.transactions.GetByID(userID, id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get transaction")
		h.writeError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}
	if tx == nil {
		h.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	raw, err := domain.EncodeTransaction(tx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to encode transaction")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(json.RawMessage(raw)))
}

// HandleGetCapital handles GET /api/users/{userID}/capital
// Both measures are returned side by side; they are not expected to agree.
func (h *Handler) HandleGetCapital(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	txs, err := h.transactions.List(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to list transactions")
		h.writeError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	perCurrency := func(fn func([]domain.Transaction, domain.Currency) float64) domain.CurrencyAmounts {
		var out domain.CurrencyAmounts
		for _, c := range domain.Currencies {
			out.Set(c, fn(txs, c))
		}
		return out
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"invested_capital":         perCurrency(capital.InvestedCapital),
		"invested_capital_settled": perCurrency(capital.InvestedCapitalSettled),
		"net_contributions":        perCurrency(capital.NetContributions),
		"transactions":             len(txs),
	}))
}

// HandleGetDailyCapital handles GET /api/users/{userID}/capital/daily
// The range defaults to the first transaction through today.
func (h *Handler) HandleGetDailyCapital(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	txs, err := h.transactions.List(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to list transactions")
		h.writeError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	to := utils.TruncateToDay(time.Now().UTC())
	from := to
	if len(txs) > 0 {
		from = utils.TruncateToDay(txs[0].OccurredAt())
	}
	q := r.URL.Query()
	if q.Get("from") != "" || q.Get("to") != "" {
		var ok bool
		from, to, ok = h.parseRangeDefault(w, q.Get("from"), q.Get("to"), from, to)
		if !ok {
			return
		}
	}

	series := capital.DailyInvestedCapital(txs, from, to)
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"series": series,
		"count":  len(series),
	}))
}

func (h *Handler) parseRange(w http.ResponseWriter, fromStr, toStr string) (time.Time, time.Time, bool) {
	return h.parseRangeDefault(w, fromStr, toStr, time.Unix(0, 0).UTC(), utils.TruncateToDay(time.Now().UTC()))
}

func (h *Handler) parseRangeDefault(w http.ResponseWriter, fromStr, toStr string, from, to time.Time) (time.Time, time.Time, bool) {
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
