package allocation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/duplicates"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/utils"
)

// Allocation is the current split of portfolio value, in percent, measured in
// a single currency. Property (asset class "other") is left out.
type Allocation struct {
	Currency    domain.Currency         `json:"currency"`
	TotalValue  float64                 `json:"total_value"`
	Values      domain.AllocationTarget `json:"values"`
	Percentages domain.AllocationTarget `json:"percentages"`
}

// ClassAllocation compares one class against its target.
type ClassAllocation struct {
	Class        string  `json:"class"`
	TargetPct    float64 `json:"target_pct"`
	CurrentPct   float64 `json:"current_pct"`
	CurrentValue float64 `json:"current_value"`
	Deviation    float64 `json:"deviation"`
}

// CurrentAllocation measures a valuation plus cash in currency. Amounts in
// the other currency go through converter; a nil converter is an error only
// when such amounts exist.
func CurrentAllocation(
	ctx context.Context,
	valuation *portfolio.Valuation,
	cash domain.CurrencyAmounts,
	converter domain.CurrencyConverter,
	currency domain.Currency,
) (*Allocation, error) {
	in := func(amounts domain.CurrencyAmounts) (float64, error) {
		total := 0.0
		for _, c := range domain.Currencies {
			v := utils.FiniteOr(amounts.Get(c), 0)
			if v == 0 {
				continue
			}
			if c != currency {
				if converter == nil {
					return 0, fmt.Errorf("no converter for %s to %s", c, currency)
				}
				converted, err := converter.Convert(ctx, v, c, currency)
				if err != nil {
					return 0, fmt.Errorf("failed to convert %s to %s: %w", c, currency, err)
				}
				v = converted
			}
			total += v
		}
		return total, nil
	}

	var values domain.AllocationTarget
	if valuation != nil {
		for class, amounts := range valuation.ByClass {
			v, err := in(amounts)
			if err != nil {
				return nil, err
			}
			switch class {
			case portfolio.ClassStocks:
				values.Stocks += v
			case portfolio.ClassBonds:
				values.Bonds += v
			case portfolio.ClassDeposits:
				values.Deposits += v
			case portfolio.ClassCash:
				values.Cash += v
			}
		}
	}
	c, err := in(cash)
	if err != nil {
		return nil, err
	}
	values.Cash += c

	alloc := &Allocation{
		Currency:   currency,
		TotalValue: values.Stocks + values.Bonds + values.Deposits + values.Cash,
		Values:     values,
	}
	if alloc.TotalValue > 0 {
		pct := func(v float64) float64 { return v / alloc.TotalValue * 100 }
		alloc.Percentages = domain.AllocationTarget{
			Stocks:   pct(values.Stocks),
			Bonds:    pct(values.Bonds),
			Deposits: pct(values.Deposits),
			Cash:     pct(values.Cash),
		}
	}
	return alloc, nil
}

// CompareClasses lines current up against target, largest deviation first.
func CompareClasses(target domain.AllocationTarget, current *Allocation) []ClassAllocation {
	if current == nil {
		return nil
	}
	rows := []ClassAllocation{
		{Class: ClassStocks, TargetPct: target.Stocks, CurrentPct: current.Percentages.Stocks, CurrentValue: current.Values.Stocks},
		{Class: ClassBonds, TargetPct: target.Bonds, CurrentPct: current.Percentages.Bonds, CurrentValue: current.Values.Bonds},
		{Class: ClassDeposits, TargetPct: target.Deposits, CurrentPct: current.Percentages.Deposits, CurrentValue: current.Values.Deposits},
		{Class: ClassCash, TargetPct: target.Cash, CurrentPct: current.Percentages.Cash, CurrentValue: current.Values.Cash},
	}
	for i := range rows {
		rows[i].Deviation = utils.Round(rows[i].CurrentPct-rows[i].TargetPct, 2)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return abs(rows[i].Deviation) > abs(rows[j].Deviation)
	})
	return rows
}

// HeldEquities returns the base tickers of stock holdings, in position order
// and without repeats, so AAPL and AAPL.BA count once.
func HeldEquities(positions []domain.Position) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, p := range positions {
		stock, ok := p.(*domain.StockPosition)
		if !ok {
			continue
		}
		base := strings.ToUpper(duplicates.BaseTicker(stock.Symbol))
		if base == "" || seen[base] {
			continue
		}
		seen[base] = true
		symbols = append(symbols, base)
	}
	return symbols
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
