package capital

import (
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// FromPositions returns the cost basis of the open positions per currency:
// purchase price times quantity for tradables, the principal for everything
// else. Tradables without a valid cost basis are left out.
func FromPositions(positions []domain.Position) domain.CurrencyAmounts {
	v := &positionCostVisitor{}
	for _, p := range positions {
		if p != nil {
			p.Accept(v)
		}
	}
	return v.totals
}

type positionCostVisitor struct {
	totals domain.CurrencyAmounts
}

func (v *positionCostVisitor) add(c domain.Currency, amount float64) {
	if c.Valid() && utils.IsFinite(amount) {
		v.totals.Add(c, amount)
	}
}

func (v *positionCostVisitor) tradable(p domain.TradablePosition) {
	if basis, ok := p.CostBasis(); ok {
		v.add(p.CurrencyCode(), basis*p.Units())
	}
}

func (v *positionCostVisitor) VisitStock(p *domain.StockPosition)   { v.tradable(p) }
func (v *positionCostVisitor) VisitBond(p *domain.BondPosition)     { v.tradable(p) }
func (v *positionCostVisitor) VisitCrypto(p *domain.CryptoPosition) { v.tradable(p) }

func (v *positionCostVisitor) VisitFixedTermDeposit(p *domain.FixedTermDepositPosition) {
	v.add(p.Currency, p.Amount)
}

func (v *positionCostVisitor) VisitCaucion(p *domain.CaucionPosition) {
	v.add(p.Currency, p.Amount)
}

func (v *positionCostVisitor) VisitMutualFund(p *domain.MutualFundPosition) {
	v.add(p.Currency, p.Amount)
}

func (v *positionCostVisitor) VisitRealEstate(p *domain.RealEstatePosition) {
	v.add(p.Currency, p.Amount)
}
