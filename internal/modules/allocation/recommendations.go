package allocation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// MaxRecommendations caps the list returned by GenerateRecommendations.
const MaxRecommendations = 5

const (
	classBand          = 5.0
	techHoldingsLimit  = 3
	highCashPct        = 15.0
	lowCashPct         = 2.0
	shortGoalStocksPct = 70.0
)

// SymbolSets are the symbol lists the rotation rules check against.
type SymbolSets struct {
	// Tech holdings beyond the limit trigger a diversification rotate.
	Tech []string
	// Volatile symbols are flagged for conservative profiles.
	Volatile []string
	// Popular is the ordered pool rotation targets are drawn from.
	Popular []string
	// SafeHaven replaces a volatile holding.
	SafeHaven string
}

// DefaultSymbolSets returns the built-in lists.
func DefaultSymbolSets() SymbolSets {
	return SymbolSets{
		Tech:      []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "META"},
		Volatile:  []string{"TSLA"},
		Popular:   []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "META", "NFLX", "JPM", "JNJ"},
		SafeHaven: "JNJ",
	}
}

// RecommendationInput is everything the recommendation rules look at.
type RecommendationInput struct {
	Profile  InvestorProfile
	Goals    []InvestmentGoal
	Target   domain.AllocationTarget
	Current  *Allocation
	Equities []string
	AsOf     time.Time
}

// GenerateRecommendations applies the rules in a fixed order and keeps the
// first MaxRecommendations.
func GenerateRecommendations(in RecommendationInput, sets SymbolSets) []Recommendation {
	var recs []Recommendation
	add := func(r Recommendation) {
		r.ID = uuid.New().String()
		recs = append(recs, r)
	}

	hasValue := in.Current != nil && in.Current.TotalValue > 0

	if hasValue {
		current := in.Current.Percentages
		classes := []struct {
			name            string
			label           string
			current, target float64
		}{
			{ClassStocks, "acciones", current.Stocks, in.Target.Stocks},
			{ClassBonds, "bonos", current.Bonds, in.Target.Bonds},
			{ClassDeposits, "depósitos", current.Deposits, in.Target.Deposits},
		}
		for _, c := range classes {
			reason := fmt.Sprintf("Tu portafolio tiene %.1f%% en %s, pero tu estrategia objetivo es %s%%",
				c.current, c.label, strconv.FormatFloat(c.target, 'f', -1, 64))
			switch {
			case c.current < c.target-classBand:
				add(Recommendation{Action: ActionIncrease, AssetClass: c.name, Reason: reason,
					Priority: PriorityHigh, ExpectedImpact: ImpactPositive})
			case c.current > c.target+classBand:
				add(Recommendation{Action: ActionDecrease, AssetClass: c.name, Reason: reason,
					Priority: PriorityMedium, ExpectedImpact: ImpactNeutral})
			}
		}
	}

	held := toSet(in.Equities)
	tech := toSet(sets.Tech)
	var heldTech []string
	for _, s := range in.Equities {
		if tech[strings.ToUpper(s)] {
			heldTech = append(heldTech, s)
		}
	}
	if len(heldTech) > techHoldingsLimit {
		for _, alt := range sets.Popular {
			alt = strings.ToUpper(alt)
			if held[alt] || tech[alt] {
				continue
			}
			add(Recommendation{
				Action:         ActionRotate,
				Symbol:         heldTech[0],
				TargetSymbol:   alt,
				Reason:         "Tu portafolio está muy concentrado en tecnología. Considera diversificar",
				Priority:       PriorityMedium,
				ExpectedImpact: ImpactPositive,
			})
			break
		}
	}

	if in.Profile.RiskAppetite == RiskConservative && sets.SafeHaven != "" {
		for _, v := range sets.Volatile {
			v = strings.ToUpper(v)
			if !held[v] {
				continue
			}
			add(Recommendation{
				Action:         ActionRotate,
				Symbol:         v,
				TargetSymbol:   sets.SafeHaven,
				Reason:         fmt.Sprintf("%s es muy volátil para un perfil conservador. Considera %s", v, sets.SafeHaven),
				Priority:       PriorityHigh,
				ExpectedImpact: ImpactPositive,
			})
		}
	}

	if hasValue {
		switch cash := in.Current.Percentages.Cash; {
		case cash > highCashPct:
			add(Recommendation{
				Action:         ActionBuy,
				AssetClass:     ClassCash,
				Reason:         "Tienes mucho efectivo disponible. Considera invertirlo según tu estrategia",
				Priority:       PriorityHigh,
				ExpectedImpact: ImpactPositive,
			})
		case cash < lowCashPct:
			add(Recommendation{
				Action:         ActionSell,
				AssetClass:     ClassCash,
				Reason:         "Tu efectivo disponible es bajo. Considera mantener más liquidez",
				Priority:       PriorityLow,
				ExpectedImpact: ImpactNeutral,
			})
		}

		if in.Current.Percentages.Stocks > shortGoalStocksPct && hasShortGoal(in.Goals, in.AsOf) {
			add(Recommendation{
				Action:         ActionDecrease,
				AssetClass:     ClassStocks,
				Reason:         "Tienes metas a corto plazo. Considera reducir la exposición a acciones",
				Priority:       PriorityHigh,
				ExpectedImpact: ImpactPositive,
			})
		}
	}

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	return recs
}

// hasShortGoal reports whether any goal is less than three whole years away.
func hasShortGoal(goals []InvestmentGoal, asOf time.Time) bool {
	for _, g := range goals {
		if utils.WholeYearsBetween(asOf, g.TargetDate.Time) < int(shortHorizonYears) {
			return true
		}
	}
	return false
}

func toSet(symbols []string) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[strings.ToUpper(s)] = true
	}
	return set
}
