package allocation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultHorizonYears = 5.0
	shortHorizonYears   = 3.0
	longHorizonYears    = 10.0

	// aggressiveStockFloor survives the short-horizon shift.
	aggressiveStockFloor = 70.0

	minCash = 1.0
)

// baselines are the starting splits per risk tier.
var baselines = map[RiskAppetite]domain.AllocationTarget{
	RiskConservative: {Stocks: 40, Bonds: 45, Deposits: 10, Cash: 5},
	RiskBalanced:     {Stocks: 60, Bonds: 30, Deposits: 5, Cash: 5},
	RiskAggressive:   {Stocks: 80, Bonds: 15, Deposits: 3, Cash: 2},
}

// Baseline returns the starting split for appetite; unknown tiers get the
// balanced split.
func Baseline(appetite RiskAppetite) domain.AllocationTarget {
	if t, ok := baselines[appetite]; ok {
		return t
	}
	return baselines[RiskBalanced]
}

// ComputeTarget derives the target split for a profile: baseline by risk,
// then the goal-horizon shift, then the knowledge nudge, then Normalize.
func ComputeTarget(profile InvestorProfile, goals []InvestmentGoal, asOf time.Time) domain.AllocationTarget {
	t := Baseline(profile.RiskAppetite)

	years := AverageYearsToGoal(goals, asOf)
	switch {
	case years < shortHorizonYears:
		t.Stocks = math.Max(20, t.Stocks-20)
		if profile.RiskAppetite == RiskAggressive {
			t.Stocks = math.Max(aggressiveStockFloor, t.Stocks)
		}
		t.Bonds = math.Min(60, t.Bonds+15)
		t.Deposits = math.Min(15, t.Deposits+5)
	case years > longHorizonYears:
		t.Stocks = math.Min(90, t.Stocks+15)
		t.Bonds = math.Max(5, t.Bonds-10)
		t.Deposits = math.Max(2, t.Deposits-2)
	}

	switch profile.KnowledgeLevel {
	case KnowledgeHigh:
		t.Stocks = math.Min(90, t.Stocks+5)
		t.Bonds = math.Max(5, t.Bonds-3)
		t.Deposits = math.Max(2, t.Deposits-2)
	case KnowledgeLow:
		t.Stocks = math.Max(20, t.Stocks-5)
		t.Bonds = math.Min(60, t.Bonds+3)
		t.Deposits = math.Min(15, t.Deposits+2)
	}

	return Normalize(t)
}

// Normalize makes the components sum to exactly 100.
//
// A shortfall goes entirely to cash. An excess is taken from cash first,
// keeping cash at 1 or more; whatever cash cannot absorb is removed from
// stocks, bonds and deposits in proportion to their weights. Components are
// then rounded to two decimals and any remaining drift is put into cash, or
// into the largest other component when cash is already at its floor.
func Normalize(t domain.AllocationTarget) domain.AllocationTarget {
	others := []float64{t.Stocks, t.Bonds, t.Deposits}
	cash := t.Cash
	total := floats.Sum(others) + cash

	reduced := false
	switch {
	case total < 100:
		cash += 100 - total
	case total > 100:
		excess := total - 100
		if cash-excess >= minCash {
			cash -= excess
		} else {
			remaining := excess - (cash - minCash)
			cash = minCash
			if share := floats.Sum(others); share > 0 {
				// others[i] -= remaining * others[i] / share
				floats.Scale(1-remaining/share, others)
				reduced = true
			}
		}
	}

	for i := range others {
		others[i] = math.Max(0, utils.Round(others[i], 2))
	}
	cash = utils.Round(cash, 2)

	out := domain.AllocationTarget{Stocks: others[0], Bonds: others[1], Deposits: others[2], Cash: cash}
	return absorbResidual(out, reduced)
}

// absorbResidual fixes rounding drift in hundredths so the sum is exact.
func absorbResidual(t domain.AllocationTarget, reduced bool) domain.AllocationTarget {
	cents := t.Cents()
	var sum int64
	for _, c := range cents {
		sum += c
	}
	residual := 10000 - sum
	if residual == 0 {
		return t
	}

	target := 3 // cash
	if reduced && cents[3]+residual < int64(minCash*100) {
		target = 0
		for i := 1; i < 3; i++ {
			if cents[i] > cents[target] {
				target = i
			}
		}
	}
	cents[target] += residual

	return domain.AllocationTarget{
		Stocks:   float64(cents[0]) / 100,
		Bonds:    float64(cents[1]) / 100,
		Deposits: float64(cents[2]) / 100,
		Cash:     float64(cents[3]) / 100,
	}
}

// AverageYearsToGoal is the mean fractional years from asOf to each goal's
// target date; 5 when there are no goals.
func AverageYearsToGoal(goals []InvestmentGoal, asOf time.Time) float64 {
	if len(goals) == 0 {
		return defaultHorizonYears
	}
	years := make([]float64, len(goals))
	for i, g := range goals {
		years[i] = utils.YearsBetween(asOf, g.TargetDate.Time)
	}
	return floats.Sum(years) / float64(len(years))
}

// TimeHorizonLabel describes the average goal horizon.
func TimeHorizonLabel(goals []InvestmentGoal, asOf time.Time) string {
	if len(goals) == 0 {
		return "5-10 años"
	}
	years := AverageYearsToGoal(goals, asOf)
	switch {
	case years < 3:
		return "Corto plazo (< 3 años)"
	case years < 7:
		return "Mediano plazo (3-7 años)"
	default:
		return "Largo plazo (> 7 años)"
	}
}

// StrategyNotes summarises the profile in a sentence or two.
func StrategyNotes(profile InvestorProfile, goals []InvestmentGoal) string {
	var notes []string

	switch profile.RiskAppetite {
	case RiskConservative:
		notes = append(notes, "Estrategia conservadora: prioriza la preservación de capital")
	case RiskAggressive:
		notes = append(notes, "Estrategia agresiva: busca maximizar retornos asumiendo mayor riesgo")
	}
	if len(goals) > 0 {
		notes = append(notes, fmt.Sprintf("Estrategia alineada con %d meta(s) de inversión", len(goals)))
	}
	if profile.KnowledgeLevel == KnowledgeHigh {
		notes = append(notes, "Perfil de alto conocimiento: puede manejar instrumentos más complejos")
	}

	return strings.Join(notes, ". ")
}
