package allocation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/portfolio"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

func sampleValuation() *portfolio.Valuation {
	return &portfolio.Valuation{
		ByClass: map[portfolio.AssetClass]domain.CurrencyAmounts{
			portfolio.ClassStocks:   {USD: 100},
			portfolio.ClassBonds:    {ARS: 30000},
			portfolio.ClassDeposits: {ARS: 20000},
			portfolio.ClassOther:    {ARS: 999999},
		},
	}
}

func TestCurrentAllocation(t *testing.T) {
	converter := testingpkg.NewMockConverter()
	converter.SetRate(domain.CurrencyUSD, domain.CurrencyARS, 1000)

	got, err := CurrentAllocation(context.Background(), sampleValuation(), domain.CurrencyAmounts{ARS: 10000}, converter, domain.CurrencyARS)
	require.NoError(t, err)

	assert.Equal(t, 160000.0, got.TotalValue, "property is left out")
	assert.InDelta(t, 62.5, got.Percentages.Stocks, 1e-9)
	assert.InDelta(t, 18.75, got.Percentages.Bonds, 1e-9)
	assert.InDelta(t, 12.5, got.Percentages.Deposits, 1e-9)
	assert.InDelta(t, 6.25, got.Percentages.Cash, 1e-9)
	assert.Equal(t, 100000.0, got.Values.Stocks)
}

func TestCurrentAllocation_ConversionErrors(t *testing.T) {
	_, err := CurrentAllocation(context.Background(), sampleValuation(), domain.CurrencyAmounts{}, testingpkg.NewMockConverter(), domain.CurrencyARS)
	assert.Error(t, err)

	_, err = CurrentAllocation(context.Background(), sampleValuation(), domain.CurrencyAmounts{}, nil, domain.CurrencyARS)
	assert.Error(t, err)

	// Nothing to convert, no converter needed.
	got, err := CurrentAllocation(context.Background(), nil, domain.CurrencyAmounts{ARS: 500}, nil, domain.CurrencyARS)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Percentages.Cash)
}

func TestCurrentAllocation_Empty(t *testing.T) {
	got, err := CurrentAllocation(context.Background(), &portfolio.Valuation{}, domain.CurrencyAmounts{}, nil, domain.CurrencyUSD)
	require.NoError(t, err)
	assert.Zero(t, got.TotalValue)
	assert.Equal(t, domain.AllocationTarget{}, got.Percentages)
}

func TestCompareClasses(t *testing.T) {
	current := &Allocation{Percentages: domain.AllocationTarget{Stocks: 80, Bonds: 10, Deposits: 5, Cash: 5}}
	target := domain.AllocationTarget{Stocks: 60, Bonds: 30, Deposits: 5, Cash: 5}

	rows := CompareClasses(target, current)

	require.Len(t, rows, 4)
	assert.Equal(t, ClassStocks, rows[0].Class)
	assert.Equal(t, 20.0, rows[0].Deviation)
	assert.Equal(t, ClassBonds, rows[1].Class)
	assert.Equal(t, -20.0, rows[1].Deviation)
	assert.Nil(t, CompareClasses(target, nil))
}

func TestHeldEquities(t *testing.T) {
	positions := []domain.Position{
		&domain.StockPosition{Symbol: "AAPL", Currency: domain.CurrencyUSD},
		&domain.StockPosition{Symbol: "aapl.ba", Currency: domain.CurrencyARS},
		&domain.CryptoPosition{Symbol: "BTC"},
		&domain.StockPosition{Symbol: "MSFT", Currency: domain.CurrencyUSD},
	}

	assert.Equal(t, []string{"AAPL", "MSFT"}, HeldEquities(positions))
}
