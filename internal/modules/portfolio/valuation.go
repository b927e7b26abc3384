package portfolio

import (
	"context"
	"time"

	"github.com/aristath/cartera/internal/domain"
)

// AssetClass is the allocation bucket a position counts toward.
type AssetClass string

const (
	ClassStocks   AssetClass = "stocks"
	ClassBonds    AssetClass = "bonds"
	ClassDeposits AssetClass = "deposits"
	ClassCash     AssetClass = "cash"
	ClassOther    AssetClass = "other"
)

// PositionValue is the valuation of one counted position.
type PositionValue struct {
	Key       string           `json:"key"`
	AssetType domain.AssetType `json:"asset_type"`
	Class     AssetClass       `json:"asset_class"`
	Currency  domain.Currency  `json:"currency"`
	Price     *float64         `json:"price,omitempty"`
	Value     float64          `json:"value"`
	Gain      float64          `json:"gain"`
}

// Valuation is the current value of a set of positions. Totals are kept per
// currency; no FX conversion happens here.
type Valuation struct {
	AsOf      time.Time                             `json:"as_of"`
	Total     domain.CurrencyAmounts                `json:"total"`
	ByClass   map[AssetClass]domain.CurrencyAmounts `json:"by_class"`
	Positions []PositionValue                       `json:"positions"`
	Skipped   []SkippedPosition                     `json:"skipped"`
	Excluded  []string                              `json:"excluded_duplicates,omitempty"`
}

// Complete reports whether every position could be valued.
func (v *Valuation) Complete() bool {
	return len(v.Skipped) == 0
}

// Value prices every position at asOf with the same skip rules as Aggregate.
func (a *Aggregator) Value(ctx context.Context, positions []domain.Position, asOf time.Time) (*Valuation, error) {
	evals, err := a.evaluateAll(ctx, positions, asOf)
	if err != nil {
		return nil, err
	}

	v := &Valuation{
		AsOf:      asOf,
		ByClass:   make(map[AssetClass]domain.CurrencyAmounts),
		Positions: make([]PositionValue, 0, len(evals)),
		Skipped:   []SkippedPosition{},
	}
	for _, e := range evals {
		if e.skipped != "" {
			v.Skipped = append(v.Skipped, e.skip())
			continue
		}
		currency := e.position.CurrencyCode()
		v.Total.Add(currency, e.value)
		bucket := v.ByClass[e.class]
		bucket.Add(currency, e.value)
		v.ByClass[e.class] = bucket
		v.Positions = append(v.Positions, PositionValue{
			Key:       e.key,
			AssetType: e.position.AssetType(),
			Class:     e.class,
			Currency:  currency,
			Price:     e.price,
			Value:     e.value,
			Gain:      e.gain,
		})
	}
	return v, nil
}

// ClassOf maps a position to its allocation bucket. Crypto counts as equity
// risk; time deposits, cauciones and funds as deposits; real estate as other.
func ClassOf(p domain.Position) AssetClass {
	c := &classVisitor{}
	p.Accept(c)
	return c.class
}

type classVisitor struct {
	class AssetClass
}

func (c *classVisitor) VisitStock(*domain.StockPosition)                       { c.class = ClassStocks }
func (c *classVisitor) VisitBond(*domain.BondPosition)                         { c.class = ClassBonds }
func (c *classVisitor) VisitCrypto(*domain.CryptoPosition)                     { c.class = ClassStocks }
func (c *classVisitor) VisitFixedTermDeposit(*domain.FixedTermDepositPosition) { c.class = ClassDeposits }
func (c *classVisitor) VisitCaucion(*domain.CaucionPosition)                   { c.class = ClassDeposits }
func (c *classVisitor) VisitMutualFund(*domain.MutualFundPosition)             { c.class = ClassDeposits }
func (c *classVisitor) VisitRealEstate(*domain.RealEstatePosition)             { c.class = ClassOther }

// currentValue is market value for tradables and principal plus accrued gain
// for everything else.
func currentValue(p domain.Position, price *float64, gain float64) float64 {
	v := &valueVisitor{price: price, gain: gain}
	p.Accept(v)
	return v.value
}

type valueVisitor struct {
	price *float64
	gain  float64
	value float64
}

func (v *valueVisitor) marked(units float64) {
	if v.price != nil {
		v.value = *v.price * units
	}
}

func (v *valueVisitor) VisitStock(p *domain.StockPosition)   { v.marked(p.Quantity) }
func (v *valueVisitor) VisitBond(p *domain.BondPosition)     { v.marked(p.Quantity) }
func (v *valueVisitor) VisitCrypto(p *domain.CryptoPosition) { v.marked(p.Quantity) }

func (v *valueVisitor) VisitFixedTermDeposit(p *domain.FixedTermDepositPosition) {
	v.value = p.Amount + v.gain
}

func (v *valueVisitor) VisitCaucion(p *domain.CaucionPosition) {
	v.value = p.Amount + v.gain
}

func (v *valueVisitor) VisitMutualFund(p *domain.MutualFundPosition) {
	v.value = p.Amount + v.gain
}

func (v *valueVisitor) VisitRealEstate(p *domain.RealEstatePosition) {
	v.value = p.Amount
}
