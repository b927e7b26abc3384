// Package gains computes the unrealized or accrued gain of a single position.
package gains

import (
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// daysPerYear is the day-count basis for simple interest accrual.
const daysPerYear = 365

// ComputeGain returns the gain of p at asOf. It is pure and never fails.
//
// Tradables use (currentPrice - costBasis) * quantity and return 0 when either
// price is missing or non-finite; callers decide whether that means unpriceable.
// Deposits and cauciones accrue linearly over their term. Money-market funds
// accrue from their start date; other funds and real estate return 0.
func ComputeGain(p domain.Position, currentPrice *float64, asOf time.Time) float64 {
	if p == nil {
		return 0
	}
	v := &gainVisitor{price: currentPrice, asOf: asOf}
	p.Accept(v)
	return v.gain
}

// AccruedInterest is simple interest on amount at ratePct per year for the
// days elapsed between start and asOf, capped at termDays. A future start
// accrues nothing.
func AccruedInterest(amount, ratePct float64, start, asOf time.Time, termDays int) float64 {
	if !utils.IsFinite(amount) || !utils.IsFinite(ratePct) || start.IsZero() {
		return 0
	}
	elapsed := utils.DaysBetween(utils.TruncateToDay(start), utils.TruncateToDay(asOf))
	if elapsed <= 0 {
		return 0
	}
	if elapsed > termDays {
		elapsed = termDays
	}
	return amount * ratePct / 100 * float64(elapsed) / daysPerYear
}

// FullTermInterest is the interest paid at maturity of a lending position.
func FullTermInterest(terms *domain.LendingTerms) float64 {
	if !utils.IsFinite(terms.Amount) || !utils.IsFinite(terms.AnnualRate) {
		return 0
	}
	return terms.Amount * terms.AnnualRate / 100 * float64(terms.Term()) / daysPerYear
}

// MoneyMarketRate returns the annual rate a money-market fund accrues at:
// AnnualRate when finite, otherwise MonthlyYield * 12.
func MoneyMarketRate(p *domain.MutualFundPosition) (float64, bool) {
	if rate, ok := utils.FinitePtr(p.AnnualRate); ok {
		return rate, true
	}
	if monthly, ok := utils.FinitePtr(p.MonthlyYield); ok {
		return monthly * 12, true
	}
	return 0, false
}

type gainVisitor struct {
	price *float64
	asOf  time.Time
	gain  float64
}

func (v *gainVisitor) VisitStock(p *domain.StockPosition)   { v.gain = v.tradable(p) }
func (v *gainVisitor) VisitBond(p *domain.BondPosition)     { v.gain = v.tradable(p) }
func (v *gainVisitor) VisitCrypto(p *domain.CryptoPosition) { v.gain = v.tradable(p) }

func (v *gainVisitor) VisitFixedTermDeposit(p *domain.FixedTermDepositPosition) {
	v.gain = v.lending(&p.LendingTerms)
}

func (v *gainVisitor) VisitCaucion(p *domain.CaucionPosition) {
	v.gain = v.lending(&p.LendingTerms)
}

func (v *gainVisitor) VisitMutualFund(p *domain.MutualFundPosition) {
	if !p.IsMoneyMarket() || p.StartDate == nil {
		return
	}
	rate, ok := MoneyMarketRate(p)
	if !ok {
		return
	}
	// Money-market funds have no maturity; accrual is bounded only by asOf.
	elapsed := utils.DaysBetween(utils.TruncateToDay(p.StartDate.Time), utils.TruncateToDay(v.asOf))
	v.gain = AccruedInterest(p.Amount, rate, p.StartDate.Time, v.asOf, elapsed)
}

func (v *gainVisitor) VisitRealEstate(*domain.RealEstatePosition) {}

func (v *gainVisitor) tradable(p domain.TradablePosition) float64 {
	price, ok := utils.FinitePtr(v.price)
	if !ok {
		return 0
	}
	basis, ok := p.CostBasis()
	if !ok {
		return 0
	}
	qty := p.Units()
	if !utils.IsFinite(qty) {
		return 0
	}
	return (price - basis) * qty
}

func (v *gainVisitor) lending(terms *domain.LendingTerms) float64 {
	return AccruedInterest(terms.Amount, terms.AnnualRate, terms.StartDate.Time, v.asOf, terms.Term())
}
