package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/domain"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

func goalIn(years int) InvestmentGoal {
	return InvestmentGoal{
		Name:       "meta",
		TargetDate: domain.NewDate(testingpkg.FixtureDate.AddDate(years, 0, 0)),
	}
}

func TestComputeTarget(t *testing.T) {
	tests := []struct {
		name     string
		risk     RiskAppetite
		know     KnowledgeLevel
		goals    []InvestmentGoal
		expected domain.AllocationTarget
	}{
		{
			name:     "balanced baseline",
			risk:     RiskBalanced,
			know:     KnowledgeMedium,
			expected: domain.AllocationTarget{Stocks: 60, Bonds: 30, Deposits: 5, Cash: 5},
		},
		{
			name:     "conservative short horizon low knowledge",
			risk:     RiskConservative,
			know:     KnowledgeLow,
			goals:    []InvestmentGoal{goalIn(1)},
			expected: domain.AllocationTarget{Stocks: 20, Bonds: 60, Deposits: 15, Cash: 5},
		},
		{
			name:     "conservative long horizon high knowledge takes excess from cash",
			risk:     RiskConservative,
			know:     KnowledgeHigh,
			goals:    []InvestmentGoal{goalIn(15)},
			expected: domain.AllocationTarget{Stocks: 60, Bonds: 32, Deposits: 6, Cash: 2},
		},
		{
			name:     "aggressive high knowledge leaves cash at the floor",
			risk:     RiskAggressive,
			know:     KnowledgeHigh,
			expected: domain.AllocationTarget{Stocks: 85, Bonds: 12, Deposits: 2, Cash: 1},
		},
		{
			name:     "aggressive short horizon redistributes proportionally",
			risk:     RiskAggressive,
			know:     KnowledgeMedium,
			goals:    []InvestmentGoal{goalIn(1), goalIn(2)},
			expected: domain.AllocationTarget{Stocks: 64.17, Bonds: 27.5, Deposits: 7.33, Cash: 1},
		},
		{
			name:     "balanced low knowledge",
			risk:     RiskBalanced,
			know:     KnowledgeLow,
			expected: domain.AllocationTarget{Stocks: 55, Bonds: 33, Deposits: 7, Cash: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := InvestorProfile{RiskAppetite: tt.risk, KnowledgeLevel: tt.know}
			got := ComputeTarget(profile, tt.goals, testingpkg.FixtureDate)

			assert.InDelta(t, tt.expected.Stocks, got.Stocks, 1e-9)
			assert.InDelta(t, tt.expected.Bonds, got.Bonds, 1e-9)
			assert.InDelta(t, tt.expected.Deposits, got.Deposits, 1e-9)
			assert.InDelta(t, tt.expected.Cash, got.Cash, 1e-9)
			assert.Equal(t, 100.0, got.Sum())
		})
	}
}

func TestComputeTarget_SumsToHundredForEveryProfile(t *testing.T) {
	risks := []RiskAppetite{RiskConservative, RiskBalanced, RiskAggressive}
	levels := []KnowledgeLevel{KnowledgeLow, KnowledgeMedium, KnowledgeHigh}
	horizons := [][]InvestmentGoal{
		nil,
		{goalIn(1)},
		{goalIn(4)},
		{goalIn(12)},
		{goalIn(1), goalIn(30)},
		{goalIn(-2)},
	}

	for _, risk := range risks {
		for _, level := range levels {
			for _, goals := range horizons {
				got := ComputeTarget(InvestorProfile{RiskAppetite: risk, KnowledgeLevel: level}, goals, testingpkg.FixtureDate)

				assert.Equal(t, 100.0, got.Sum(), "%s/%s/%d goals", risk, level, len(goals))
				assert.GreaterOrEqual(t, got.Stocks, 0.0)
				assert.GreaterOrEqual(t, got.Bonds, 0.0)
				assert.GreaterOrEqual(t, got.Deposits, 0.0)
				assert.GreaterOrEqual(t, got.Cash, 1.0)
				assert.LessOrEqual(t, got.Stocks, 90.0)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Run("shortfall goes to cash", func(t *testing.T) {
		got := Normalize(domain.AllocationTarget{Stocks: 50, Bonds: 20, Deposits: 10, Cash: 5})
		assert.Equal(t, domain.AllocationTarget{Stocks: 50, Bonds: 20, Deposits: 10, Cash: 20}, got)
	})

	t.Run("excess absorbed by cash", func(t *testing.T) {
		got := Normalize(domain.AllocationTarget{Stocks: 60, Bonds: 30, Deposits: 5, Cash: 8})
		assert.Equal(t, domain.AllocationTarget{Stocks: 60, Bonds: 30, Deposits: 5, Cash: 5}, got)
	})

	t.Run("excess beyond cash spread by weight", func(t *testing.T) {
		got := Normalize(domain.AllocationTarget{Stocks: 90, Bonds: 60, Deposits: 15, Cash: 5})
		assert.InDelta(t, 54.0, got.Stocks, 1e-9)
		assert.InDelta(t, 36.0, got.Bonds, 1e-9)
		assert.InDelta(t, 9.0, got.Deposits, 1e-9)
		assert.Equal(t, 1.0, got.Cash)
		assert.Equal(t, 100.0, got.Sum())
	})

	t.Run("rounding drift lands in cash", func(t *testing.T) {
		got := Normalize(domain.AllocationTarget{Stocks: 33.333, Bonds: 33.333, Deposits: 33.333})
		assert.Equal(t, 33.33, got.Stocks)
		assert.Equal(t, 33.33, got.Bonds)
		assert.Equal(t, 33.33, got.Deposits)
		assert.InDelta(t, 0.01, got.Cash, 1e-9)
		assert.Equal(t, 100.0, got.Sum())
	})

	t.Run("already normalized is unchanged", func(t *testing.T) {
		in := domain.AllocationTarget{Stocks: 40, Bonds: 45, Deposits: 10, Cash: 5}
		assert.Equal(t, in, Normalize(in))
		assert.Equal(t, in, Normalize(Normalize(in)))
	})
}

func TestAbsorbResidual_ReducedKeepsCashFloor(t *testing.T) {
	// Rounded components one cent over with cash at its floor: the largest
	// other component gives it back.
	got := absorbResidual(domain.AllocationTarget{Stocks: 50.01, Bonds: 30, Deposits: 19, Cash: 1}, true)
	assert.Equal(t, 1.0, got.Cash)
	assert.InDelta(t, 50.0, got.Stocks, 1e-9)
	assert.Equal(t, 100.0, got.Sum())
}

func TestAverageYearsToGoalAndLabel(t *testing.T) {
	asOf := testingpkg.FixtureDate

	assert.Equal(t, 5.0, AverageYearsToGoal(nil, asOf))
	assert.InDelta(t, 3.0, AverageYearsToGoal([]InvestmentGoal{goalIn(1), goalIn(5)}, asOf), 0.01)

	tests := []struct {
		goals    []InvestmentGoal
		expected string
	}{
		{nil, "5-10 años"},
		{[]InvestmentGoal{goalIn(2)}, "Corto plazo (< 3 años)"},
		{[]InvestmentGoal{goalIn(5)}, "Mediano plazo (3-7 años)"},
		{[]InvestmentGoal{goalIn(9)}, "Largo plazo (> 7 años)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TimeHorizonLabel(tt.goals, asOf))
	}
}

func TestStrategyNotes(t *testing.T) {
	notes := StrategyNotes(InvestorProfile{RiskAppetite: RiskConservative, KnowledgeLevel: KnowledgeHigh}, []InvestmentGoal{goalIn(3), goalIn(4)})
	assert.Equal(t,
		"Estrategia conservadora: prioriza la preservación de capital. "+
			"Estrategia alineada con 2 meta(s) de inversión. "+
			"Perfil de alto conocimiento: puede manejar instrumentos más complejos",
		notes)

	assert.Empty(t, StrategyNotes(InvestorProfile{RiskAppetite: RiskBalanced, KnowledgeLevel: KnowledgeMedium}, nil))
}

func TestProfileAndGoalValidate(t *testing.T) {
	require.NoError(t, InvestorProfile{RiskAppetite: RiskAggressive, KnowledgeLevel: KnowledgeLow}.Validate())
	assert.ErrorIs(t, InvestorProfile{RiskAppetite: "Temerario", KnowledgeLevel: KnowledgeLow}.Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, InvestorProfile{RiskAppetite: RiskBalanced}.Validate(), ErrInvalidProfile)

	require.NoError(t, goalIn(3).Validate())
	assert.ErrorIs(t, InvestmentGoal{TargetDate: domain.NewDate(time.Now())}.Validate(), ErrInvalidGoal)
	assert.ErrorIs(t, InvestmentGoal{Name: "casa"}.Validate(), ErrInvalidGoal)
	assert.ErrorIs(t, InvestmentGoal{Name: "casa", TargetAmount: -1, TargetDate: domain.NewDate(time.Now())}.Validate(), ErrInvalidGoal)
}
