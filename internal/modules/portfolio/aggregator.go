// Package portfolio values positions, aggregates their gains per currency and
// applies trades and cash movements to a user's book.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/duplicates"
	"github.com/aristath/cartera/internal/modules/gains"
	"github.com/aristath/cartera/internal/utils"
)

// DefaultLookbackDays is the price-series window requested per lookup.
const DefaultLookbackDays = 7

// Skip reasons reported for positions excluded from totals.
const (
	ReasonNoCostBasis    = "no valid cost basis"
	ReasonNoPriceData    = "no price data"
	ReasonInvalidPrice   = "last close is not a valid price"
	ReasonInvalidTerms   = "amount or rate is not a finite number"
	ReasonNonFiniteValue = "computed value is not finite"
)

// SkippedPosition is a position that could not be priced or valued.
type SkippedPosition struct {
	Key       string           `json:"key"`
	AssetType domain.AssetType `json:"asset_type"`
	Currency  domain.Currency  `json:"currency"`
	Reason    string           `json:"reason"`
}

// NetGains is the per-currency sum of position gains.
type NetGains struct {
	ARS        float64            `json:"ars"`
	USD        float64            `json:"usd"`
	Skipped    []SkippedPosition  `json:"skipped"`
	ByPosition map[string]float64 `json:"by_position,omitempty"`
}

// Aggregator prices positions through a PriceLookup and sums their gains.
type Aggregator struct {
	prices       domain.PriceLookup
	lookbackDays int
	log          zerolog.Logger
}

// NewAggregator creates an aggregator. lookbackDays <= 0 uses DefaultLookbackDays.
func NewAggregator(prices domain.PriceLookup, lookbackDays int, log zerolog.Logger) *Aggregator {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Aggregator{
		prices:       prices,
		lookbackDays: lookbackDays,
		log:          log.With().Str("service", "net_gains").Logger(),
	}
}

// Aggregate sums the gain of every position by currency at asOf. Positions
// that cannot be priced are listed in Skipped and left out of the totals. A
// failed lookup only skips its own position; the returned error is reserved
// for context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, positions []domain.Position, asOf time.Time) (*NetGains, error) {
	evals, err := a.evaluateAll(ctx, positions, asOf)
	if err != nil {
		return nil, err
	}
	return sumGains(evals, false), nil
}

// GetPortfolioNetGains is Aggregate plus each counted position's gain keyed
// by position key (symbol-currency for tradables, id otherwise).
func (a *Aggregator) GetPortfolioNetGains(ctx context.Context, positions []domain.Position, asOf time.Time) (*NetGains, error) {
	evals, err := a.evaluateAll(ctx, positions, asOf)
	if err != nil {
		return nil, err
	}
	return sumGains(evals, true), nil
}

func sumGains(evals []evaluation, byPosition bool) *NetGains {
	result := &NetGains{Skipped: []SkippedPosition{}}
	if byPosition {
		result.ByPosition = make(map[string]float64, len(evals))
	}

	for _, e := range evals {
		if e.skipped != "" {
			result.Skipped = append(result.Skipped, e.skip())
			continue
		}
		switch e.position.CurrencyCode() {
		case domain.CurrencyARS:
			result.ARS += e.gain
		case domain.CurrencyUSD:
			result.USD += e.gain
		}
		if byPosition {
			result.ByPosition[e.key] += e.gain
		}
	}
	return result
}

// evaluation is the outcome of pricing one position.
type evaluation struct {
	key      string
	position domain.Position
	class    AssetClass
	price    *float64
	gain     float64
	value    float64
	skipped  string
}

func (e evaluation) skip() SkippedPosition {
	return SkippedPosition{
		Key:       e.key,
		AssetType: e.position.AssetType(),
		Currency:  e.position.CurrencyCode(),
		Reason:    e.skipped,
	}
}

func (a *Aggregator) evaluateAll(ctx context.Context, positions []domain.Position, asOf time.Time) ([]evaluation, error) {
	defer utils.OperationTimer("evaluate_positions", a.log)()

	evals := make([]evaluation, 0, len(positions))
	for _, p := range positions {
		if p == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to evaluate positions: %w", err)
		}

		e := a.evaluate(ctx, p, asOf)
		if e.skipped != "" {
			a.log.Warn().
				Str("position", e.key).
				Str("asset_type", string(p.AssetType())).
				Str("reason", e.skipped).
				Msg("Position excluded from totals")
		}
		evals = append(evals, e)
	}
	return evals, nil
}

func (a *Aggregator) evaluate(ctx context.Context, p domain.Position, asOf time.Time) evaluation {
	e := evaluation{key: p.Key(), position: p, class: ClassOf(p)}

	if t, ok := p.(domain.TradablePosition); ok {
		if _, ok := t.CostBasis(); !ok {
			e.skipped = ReasonNoCostBasis
			return e
		}
		price, reason := a.lastClose(ctx, LookupSymbol(t))
		if reason != "" {
			e.skipped = reason
			return e
		}
		e.price = &price
	} else if !validTerms(p) {
		e.skipped = ReasonInvalidTerms
		return e
	}

	e.gain = gains.ComputeGain(p, e.price, asOf)
	e.value = currentValue(p, e.price, e.gain)
	if !utils.IsFinite(e.gain) || !utils.IsFinite(e.value) {
		e.skipped = ReasonNonFiniteValue
	}
	return e
}

// lastClose returns the latest close of symbol or a skip reason.
func (a *Aggregator) lastClose(ctx context.Context, symbol string) (float64, string) {
	if a.prices == nil {
		return 0, ReasonNoPriceData
	}

	bars, err := a.prices.GetPriceHistory(ctx, symbol, a.lookbackDays)
	if err != nil {
		a.log.Debug().Err(err).Str("symbol", symbol).Msg("Price lookup failed")
		return 0, fmt.Sprintf("price lookup failed: %v", err)
	}
	if len(bars) == 0 {
		return 0, ReasonNoPriceData
	}

	last := bars[len(bars)-1].Close
	if !utils.IsFinite(last) || last <= 0 {
		return 0, ReasonInvalidPrice
	}
	a.log.Debug().Str("symbol", symbol).Float64("close", last).Msg("Resolved price")
	return last, ""
}

// LookupSymbol is the symbol a tradable is priced under. Positions listed on
// BCBA get the .BA venue suffix; crypto pairs are quoted as BASE-USD.
func LookupSymbol(t domain.TradablePosition) string {
	symbol := t.Identifier()
	switch p := t.(type) {
	case *domain.CryptoPosition:
		return cryptoPair(symbol)
	case *domain.StockPosition:
		if p.Market == domain.MarketBCBA {
			return duplicates.EnsureBASuffix(symbol)
		}
	case *domain.BondPosition:
		if p.Market == domain.MarketBCBA || p.Currency == domain.CurrencyARS {
			return duplicates.EnsureBASuffix(symbol)
		}
	}
	return symbol
}

// cryptoPair maps exchange pairs such as BTCUSDT to BTC-USD. Stablecoin quotes
// count as USD.
func cryptoPair(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, "-") {
		return s
	}
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		if base := strings.TrimSuffix(s, quote); base != s && base != "" {
			return base + "-USD"
		}
	}
	return s + "-USD"
}

func validTerms(p domain.Position) bool {
	switch v := p.(type) {
	case *domain.FixedTermDepositPosition:
		return utils.IsFinite(v.Amount) && utils.IsFinite(v.AnnualRate)
	case *domain.CaucionPosition:
		return utils.IsFinite(v.Amount) && utils.IsFinite(v.AnnualRate)
	case *domain.MutualFundPosition:
		return utils.IsFinite(v.Amount)
	case *domain.RealEstatePosition:
		return utils.IsFinite(v.Amount)
	}
	return true
}
