// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/utils"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio handles GET /api/users/{userID}/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	positions, err := h.service.GetPositions(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to get positions")
		h.writeError(w, http.StatusInternalServerError, "Failed to get positions")
		return
	}
	cash, err := h.service.GetCash(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to get cash balances")
		h.writeError(w, http.StatusInternalServerError, "Failed to get cash balances")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": domain.PositionList(positions),
		"cash":      cash,
	})
}

// HandleGetValuation handles GET /api/users/{userID}/portfolio/valuation?date=YYYY-MM-DD
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	valuation, err := h.service.Valuation(r.Context(), userID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to value portfolio")
		h.writeError(w, http.StatusInternalServerError, "Failed to value portfolio")
		return
	}
	h.writeJSON(w, http.StatusOK, valuation)
}

// HandleGetNetGains handles GET /api/users/{userID}/portfolio/gains?date=YYYY-MM-DD
func (h *Handler) HandleGetNetGains(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	result, err := h.service.NetGains(r.Context(), userID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to compute net gains")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute net gains")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleGetCostBasis handles GET /api/users/{userID}/portfolio/cost-basis
func (h *Handler) HandleGetCostBasis(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	basis, err := h.service.CostBasis(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to compute cost basis")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute cost basis")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cost_basis": basis,
	})
}

// HandleGetDuplicates handles GET /api/users/{userID}/portfolio/duplicates
func (h *Handler) HandleGetDuplicates(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.service.Duplicates(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to detect duplicates")
		h.writeError(w, http.StatusInternalServerError, "Failed to detect duplicates")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleDeposit handles POST /api/users/{userID}/portfolio/deposit
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	var req portfolio.DepositRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Deposit(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleWithdraw handles POST /api/users/{userID}/portfolio/withdraw
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req portfolio.WithdrawRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Withdraw(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleBuy handles POST /api/users/{userID}/portfolio/buy
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Buy(r.Context(), chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleSell handles POST /api/users/{userID}/portfolio/sell
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Sell(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleCreateFixedTerm handles POST /api/users/{userID}/portfolio/fixed-term
func (h *Handler) HandleCreateFixedTerm(w http.ResponseWriter, r *http.Request) {
	var req portfolio.LendingRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.CreateFixedTerm(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleCreateCaucion handles POST /api/users/{userID}/portfolio/caucion
func (h *Handler) HandleCreateCaucion(w http.ResponseWriter, r *http.Request) {
	var req portfolio.LendingRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.CreateCaucion(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleCreateMutualFund handles POST /api/users/{userID}/portfolio/mutual-fund
func (h *Handler) HandleCreateMutualFund(w http.ResponseWriter, r *http.Request) {
	var req portfolio.MutualFundRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.CreateMutualFund(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleCreateRealEstate handles POST /api/users/{userID}/portfolio/real-estate
func (h *Handler) HandleCreateRealEstate(w http.ResponseWriter, r *http.Request) {
	var req portfolio.RealEstateRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.CreateRealEstate(chi.URLParam(r, "userID"), req)
	h.respond(w, result, err)
}

// HandleProcessMaturities handles POST /api/users/{userID}/portfolio/maturities
func (h *Handler) HandleProcessMaturities(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}

	credits, err := h.service.ProcessMaturities(userID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("Failed to process maturities")
		h.writeError(w, http.StatusInternalServerError, "Failed to process maturities")
		return
	}

	list := make(domain.TransactionList, 0, len(credits))
	for _, c := range credits {
		list = append(list, c)
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"credited": list,
		"count":    len(list),
	})
}

func (h *Handler) respond(w http.ResponseWriter, result *portfolio.Result, err error) {
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	raw, err := domain.EncodeTransaction(result.Transaction)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode transaction")
		h.writeError(w, http.StatusInternalServerError, "Failed to encode transaction")
		return
	}
	response := map[string]interface{}{
		"transaction": json.RawMessage(raw),
		"positions":   result.Positions,
		"cash":        result.Cash,
	}
	if len(result.Warnings) > 0 {
		response["warnings"] = result.Warnings
	}
	h.writeJSON(w, http.StatusOK, response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPositionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientQuantity),
		errors.Is(err, domain.ErrInvalidTransaction),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrUnsupportedAssetType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) asOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Now().UTC(), true
	}
	asOf, err := utils.ParseDate(s)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return asOf, true
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
