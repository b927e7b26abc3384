package domain

import (
	"fmt"
	"math"
	"strings"
)

// dustQuantity is the remaining quantity below which a holding counts as closed.
const dustQuantity = 1e-6

// defaultTermDays applies to a deposit with neither a term nor a usable maturity date.
const defaultTermDays = 30

// Position is a holding of one asset. The set of variants is closed: every
// implementation lives in this file and is reached through PositionVisitor.
type Position interface {
	AssetType() AssetType
	CurrencyCode() Currency
	// Key is stable per position: symbol-currency for tradables, id otherwise.
	Key() string
	Accept(v PositionVisitor)
	isPosition()
}

// PositionVisitor has one method per position variant. Adding a variant adds a
// method here, which breaks every consumer until it handles the new case.
type PositionVisitor interface {
	VisitStock(p *StockPosition)
	VisitBond(p *BondPosition)
	VisitCrypto(p *CryptoPosition)
	VisitFixedTermDeposit(p *FixedTermDepositPosition)
	VisitCaucion(p *CaucionPosition)
	VisitMutualFund(p *MutualFundPosition)
	VisitRealEstate(p *RealEstatePosition)
}

// TradablePosition is a position valued by quantity and a market price.
type TradablePosition interface {
	Position
	Identifier() string
	Units() float64
	CostBasis() (float64, bool)
	AddLot(quantity, totalCost float64)
	Reduce(quantity float64) error
	Closed() bool
}

// Holding carries the quantity and cost basis shared by tradable variants.
//
// PurchasePrice is authoritative; AveragePrice is the legacy field read only
// when PurchasePrice is absent or non-finite.
type Holding struct {
	Quantity      float64  `json:"quantity"`
	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	AveragePrice  *float64 `json:"averagePrice,omitempty"`
}

// Units returns the held quantity.
func (h *Holding) Units() float64 {
	return h.Quantity
}

// CostBasis returns the per-unit cost and false when no finite price is recorded.
func (h *Holding) CostBasis() (float64, bool) {
	if h.PurchasePrice != nil && isFinite(*h.PurchasePrice) {
		return *h.PurchasePrice, true
	}
	if h.AveragePrice != nil && isFinite(*h.AveragePrice) {
		return *h.AveragePrice, true
	}
	return math.NaN(), false
}

// AddLot folds a purchase into the holding using a running weighted average:
// newAvg = (oldAvg*oldQty + totalCost) / newQty. A holding without a valid cost
// basis takes the new lot's unit cost for all its units.
func (h *Holding) AddLot(quantity, totalCost float64) {
	newQty := h.Quantity + quantity
	if newQty <= 0 {
		return
	}

	var avg float64
	if basis, ok := h.CostBasis(); ok {
		avg = (basis*h.Quantity + totalCost) / newQty
	} else {
		avg = totalCost / quantity
	}

	h.Quantity = newQty
	h.PurchasePrice = &avg
	h.AveragePrice = nil
}

// Reduce removes quantity units.
func (h *Holding) Reduce(quantity float64) error {
	if quantity > h.Quantity+dustQuantity {
		return fmt.Errorf("%w: have %g, selling %g", ErrInsufficientQuantity, h.Quantity, quantity)
	}
	h.Quantity -= quantity
	if h.Quantity < 0 {
		h.Quantity = 0
	}
	return nil
}

// Closed reports whether the remaining quantity is dust.
func (h *Holding) Closed() bool {
	return h.Quantity < dustQuantity
}

// StockPosition is an equity holding.
type StockPosition struct {
	Symbol string `json:"symbol"`
	Holding
	Currency Currency `json:"currency"`
	Market   Market   `json:"market,omitempty"`
}

func (p *StockPosition) AssetType() AssetType     { return AssetStock }
func (p *StockPosition) CurrencyCode() Currency   { return p.Currency }
func (p *StockPosition) Key() string              { return p.Symbol + "-" + string(p.Currency) }
func (p *StockPosition) Identifier() string       { return p.Symbol }
func (p *StockPosition) Accept(v PositionVisitor) { v.VisitStock(p) }
func (p *StockPosition) isPosition()              {}

// BondPosition is a sovereign or corporate bond holding.
type BondPosition struct {
	Ticker string `json:"ticker"`
	Holding
	Currency Currency `json:"currency"`
	Market   Market   `json:"market,omitempty"`
}

func (p *BondPosition) AssetType() AssetType     { return AssetBond }
func (p *BondPosition) CurrencyCode() Currency   { return p.Currency }
func (p *BondPosition) Key() string              { return p.Ticker + "-" + string(p.Currency) }
func (p *BondPosition) Identifier() string       { return p.Ticker }
func (p *BondPosition) Accept(v PositionVisitor) { v.VisitBond(p) }
func (p *BondPosition) isPosition()              {}

// CryptoPosition is a crypto holding. It is always booked in USD; a stored
// Currency field is informational only.
type CryptoPosition struct {
	Symbol string `json:"symbol"`
	Holding
	Currency Currency `json:"currency,omitempty"`
}

func (p *CryptoPosition) AssetType() AssetType     { return AssetCrypto }
func (p *CryptoPosition) CurrencyCode() Currency   { return CurrencyUSD }
func (p *CryptoPosition) Key() string              { return p.Symbol + "-" + string(CurrencyUSD) }
func (p *CryptoPosition) Identifier() string       { return p.Symbol }
func (p *CryptoPosition) Accept(v PositionVisitor) { v.VisitCrypto(p) }
func (p *CryptoPosition) isPosition()              {}

// LendingTerms are the fields shared by time deposits and cauciones.
type LendingTerms struct {
	ID           string   `json:"id"`
	Provider     string   `json:"provider"`
	Amount       float64  `json:"amount"`
	AnnualRate   float64  `json:"annualRate"`
	StartDate    Date     `json:"startDate"`
	MaturityDate Date     `json:"maturityDate"`
	TermDays     int      `json:"termDays,omitempty"`
	Currency     Currency `json:"currency"`
}

// Term returns the accrual term in days: TermDays when set, otherwise the span
// from start to maturity, otherwise 30.
func (l *LendingTerms) Term() int {
	if l.TermDays > 0 {
		return l.TermDays
	}
	if !l.StartDate.IsZero() && l.MaturityDate.After(l.StartDate.Time) {
		return int(math.Round(l.MaturityDate.Sub(l.StartDate.Time).Hours() / 24))
	}
	return defaultTermDays
}

// FixedTermDepositPosition is a bank time deposit (plazo fijo).
type FixedTermDepositPosition struct {
	LendingTerms
}

func (p *FixedTermDepositPosition) AssetType() AssetType     { return AssetFixedTermDeposit }
func (p *FixedTermDepositPosition) CurrencyCode() Currency   { return p.Currency }
func (p *FixedTermDepositPosition) Key() string              { return p.ID }
func (p *FixedTermDepositPosition) Accept(v PositionVisitor) { v.VisitFixedTermDeposit(p) }
func (p *FixedTermDepositPosition) isPosition()              {}

// CaucionPosition is a short-term repo-style loan.
type CaucionPosition struct {
	LendingTerms
}

func (p *CaucionPosition) AssetType() AssetType     { return AssetCaucion }
func (p *CaucionPosition) CurrencyCode() Currency   { return p.Currency }
func (p *CaucionPosition) Key() string              { return p.ID }
func (p *CaucionPosition) Accept(v PositionVisitor) { v.VisitCaucion(p) }
func (p *CaucionPosition) isPosition()              {}

// MoneyMarketCategory is the mutual-fund category that accrues daily.
const MoneyMarketCategory = "Money Market"

// MutualFundPosition is a mutual fund (FCI) holding.
type MutualFundPosition struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Amount       float64  `json:"amount"`
	AnnualRate   *float64 `json:"annualRate,omitempty"`
	MonthlyYield *float64 `json:"monthlyYield,omitempty"`
	StartDate    *Date    `json:"startDate,omitempty"`
	Currency     Currency `json:"currency"`
}

// IsMoneyMarket reports whether the fund accrues like a money-market fund.
func (p *MutualFundPosition) IsMoneyMarket() bool {
	return strings.EqualFold(strings.TrimSpace(p.Category), MoneyMarketCategory)
}

func (p *MutualFundPosition) AssetType() AssetType     { return AssetMutualFund }
func (p *MutualFundPosition) CurrencyCode() Currency   { return p.Currency }
func (p *MutualFundPosition) Key() string              { return p.ID }
func (p *MutualFundPosition) Accept(v PositionVisitor) { v.VisitMutualFund(p) }
func (p *MutualFundPosition) isPosition()              {}

// RealEstatePosition is a property tracked at a declared amount.
type RealEstatePosition struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Amount     float64  `json:"amount"`
	AnnualRate float64  `json:"annualRate"`
	Currency   Currency `json:"currency"`
}

func (p *RealEstatePosition) AssetType() AssetType     { return AssetRealEstate }
func (p *RealEstatePosition) CurrencyCode() Currency   { return p.Currency }
func (p *RealEstatePosition) Key() string              { return p.ID }
func (p *RealEstatePosition) Accept(v PositionVisitor) { v.VisitRealEstate(p) }
func (p *RealEstatePosition) isPosition()              {}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
