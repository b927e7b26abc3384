package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio)            // Positions and cash
		r.Get("/valuation", h.HandleGetValuation)   // Current value by currency and asset class
		r.Get("/gains", h.HandleGetNetGains)        // Net gains with per-position attribution
		r.Get("/cost-basis", h.HandleGetCostBasis)  // Cost of open positions per currency
		r.Get("/duplicates", h.HandleGetDuplicates) // Same instrument on several venues

		// Cash movements
		r.Post("/deposit", h.HandleDeposit)
		r.Post("/withdraw", h.HandleWithdraw)

		// Trades
		r.Post("/buy", h.HandleBuy)
		r.Post("/sell", h.HandleSell)

		// Deposits, cauciones, funds and property
		r.Post("/fixed-term", h.HandleCreateFixedTerm)
		r.Post("/caucion", h.HandleCreateCaucion)
		r.Post("/mutual-fund", h.HandleCreateMutualFund)
		r.Post("/real-estate", h.HandleCreateRealEstate)
		r.Post("/maturities", h.HandleProcessMaturities)
	})
}
