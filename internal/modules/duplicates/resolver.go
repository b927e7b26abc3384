// Package duplicates finds positions that hold the same instrument on different
// venues, such as AAPL on NASDAQ and AAPL.BA on BCBA.
package duplicates

import (
	"fmt"
	"strings"

	"github.com/aristath/cartera/internal/domain"
)

// Group is a set of two or more positions sharing a base ticker.
type Group struct {
	BaseTicker string              `json:"base_ticker"`
	Positions  domain.PositionList `json:"positions"`
	TotalValue float64             `json:"total_value"`
	Warning    string              `json:"warning"`
}

// Result is the outcome of DetectDuplicates.
type Result struct {
	Groups         []Group `json:"groups"`
	HasDuplicates  bool    `json:"has_duplicates"`
	WarningMessage string  `json:"warning_message,omitempty"`
}

// DetectDuplicates groups stock and bond positions by base ticker, ignoring
// currency, and reports every group with more than one member. Groups are
// returned in order of first appearance.
func DetectDuplicates(positions []domain.Position) Result {
	var order []string
	members := make(map[string][]domain.Position)
	for _, p := range positions {
		ticker, ok := listedTicker(p)
		if !ok {
			continue
		}
		base := BaseTicker(ticker)
		if _, seen := members[base]; !seen {
			order = append(order, base)
		}
		members[base] = append(members[base], p)
	}

	var result Result
	for _, base := range order {
		group := members[base]
		if len(group) < 2 {
			continue
		}

		tickers := make([]string, 0, len(group))
		var total float64
		for _, p := range group {
			ticker, _ := listedTicker(p)
			tickers = append(tickers, ticker)
			total += bookValue(p)
		}

		result.Groups = append(result.Groups, Group{
			BaseTicker: base,
			Positions:  group,
			TotalValue: total,
			Warning: fmt.Sprintf("Posiciones duplicadas detectadas: %s. Considere consolidar en una sola posición.",
				strings.Join(tickers, ", ")),
		})
	}

	if len(result.Groups) > 0 {
		result.HasDuplicates = true
		result.WarningMessage = fmt.Sprintf(
			"Se detectaron %d grupo(s) de activos duplicados. Revise las posiciones para evitar doble conteo.",
			len(result.Groups))
	}
	return result
}

// FilterDuplicates drops every member of every duplicate group. Other
// positions keep their order.
func FilterDuplicates(positions []domain.Position) []domain.Position {
	drop := make(map[domain.Position]bool)
	for _, g := range DetectDuplicates(positions).Groups {
		for _, p := range g.Positions {
			drop[p] = true
		}
	}
	return without(positions, drop)
}

// ConsolidateDuplicates keeps, per duplicate group, only the member with the
// highest quantity * purchase price. Ties keep the earlier member.
func ConsolidateDuplicates(positions []domain.Position) []domain.Position {
	drop := make(map[domain.Position]bool)
	for _, g := range DetectDuplicates(positions).Groups {
		best := g.Positions[0]
		bestValue := 0.0
		for _, p := range g.Positions {
			if v := bookValue(p); v > bestValue {
				best, bestValue = p, v
			}
		}
		for _, p := range g.Positions {
			if p != best {
				drop[p] = true
			}
		}
	}
	return without(positions, drop)
}

// AreSameAsset reports whether a and b are the same variant with the same base
// ticker. Currency is ignored.
func AreSameAsset(a, b domain.Position) bool {
	if a == nil || b == nil || a.AssetType() != b.AssetType() {
		return false
	}
	ta, ok := listedTicker(a)
	if !ok {
		return false
	}
	tb, _ := listedTicker(b)
	return IsSameTicker(ta, tb)
}

func listedTicker(p domain.Position) (string, bool) {
	switch v := p.(type) {
	case *domain.StockPosition:
		return v.Symbol, true
	case *domain.BondPosition:
		return v.Ticker, true
	}
	return "", false
}

// bookValue is quantity times purchase price; unpriced positions count as 0.
func bookValue(p domain.Position) float64 {
	t, ok := p.(domain.TradablePosition)
	if !ok {
		return 0
	}
	basis, ok := t.CostBasis()
	if !ok {
		return 0
	}
	return t.Units() * basis
}

func without(positions []domain.Position, drop map[domain.Position]bool) []domain.Position {
	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		if !drop[p] {
			out = append(out, p)
		}
	}
	return out
}
