package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/domain"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

func TestApplyBuy_NewAndExistingPosition(t *testing.T) {
	d := testingpkg.FixtureDate

	buy := testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 100, domain.CurrencyUSD, d)
	positions, target, err := ApplyBuy(nil, buy)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL-USD", target.Key())

	second := testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 200, domain.CurrencyUSD, d)
	second.CommissionPct = testingpkg.Float64(1)
	positions, target, err = ApplyBuy(positions, second)
	require.NoError(t, err)
	require.Len(t, positions, 1)

	basis, ok := target.CostBasis()
	require.True(t, ok)
	assert.Equal(t, 20.0, target.Units())
	// (100×10 + 2000×1.01) / 20
	assert.InDelta(t, 151, basis, 1e-9)
}

func TestApplyBuy_SameSymbolOtherCurrencyIsSeparate(t *testing.T) {
	d := testingpkg.FixtureDate
	positions, _, err := ApplyBuy(nil, testingpkg.NewBuy("AAPL", domain.AssetStock, 1, 100, domain.CurrencyUSD, d))
	require.NoError(t, err)
	positions, _, err = ApplyBuy(positions, testingpkg.NewBuy("AAPL", domain.AssetStock, 1, 9000, domain.CurrencyARS, d))
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestApplyBuy_LegacyAverageIsFolded(t *testing.T) {
	positions := []domain.Position{&domain.CryptoPosition{
		Symbol:  "BTCUSDT",
		Holding: domain.Holding{Quantity: 1, AveragePrice: testingpkg.Float64(30000)},
	}}
	buy := testingpkg.NewBuy("BTCUSDT", domain.AssetCrypto, 1, 50000, domain.CurrencyUSD, testingpkg.FixtureDate)

	_, target, err := ApplyBuy(positions, buy)
	require.NoError(t, err)

	crypto := target.(*domain.CryptoPosition)
	require.NotNil(t, crypto.PurchasePrice)
	assert.Nil(t, crypto.AveragePrice)
	assert.InDelta(t, 40000, *crypto.PurchasePrice, 1e-9)
}

func TestLotCost_CryptoFundedInARS(t *testing.T) {
	buy := testingpkg.NewBuy("BTCUSDT", domain.AssetCrypto, 0.01, 100000, domain.CurrencyUSD, testingpkg.FixtureDate)
	buy.OriginalCurrency = domain.CurrencyARS
	buy.OriginalAmount = testingpkg.Float64(1_000_000)
	buy.ConvertedAmount = testingpkg.Float64(1010)

	assert.Equal(t, 1010.0, LotCost(buy))

	buy.ConvertedAmount = nil
	assert.InDelta(t, 1000, LotCost(buy), 1e-9)
}

func TestApplyBuy_RejectsInvalidInput(t *testing.T) {
	d := testingpkg.FixtureDate

	_, _, err := ApplyBuy(nil, testingpkg.NewSell("AAPL", domain.AssetStock, 1, 1, domain.CurrencyUSD, d))
	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)

	_, _, err = ApplyBuy(nil, testingpkg.NewBuy("AAPL", domain.AssetStock, 0, 1, domain.CurrencyUSD, d))
	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)

	_, _, err = ApplyBuy(nil, testingpkg.NewBuy("X", domain.AssetMutualFund, 1, 1, domain.CurrencyUSD, d))
	assert.ErrorIs(t, err, domain.ErrUnsupportedAssetType)
}

func TestApplySell(t *testing.T) {
	d := testingpkg.FixtureDate
	positions := testingpkg.NewPositionFixtures()

	positions, removed, err := ApplySell(positions, testingpkg.NewSell("AAPL", domain.AssetStock, 4, 160, domain.CurrencyUSD, d))
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 6.0, positions[0].(*domain.StockPosition).Quantity)

	_, _, err = ApplySell(positions, testingpkg.NewSell("AAPL", domain.AssetStock, 7, 160, domain.CurrencyUSD, d))
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	before := len(positions)
	positions, removed, err = ApplySell(positions, testingpkg.NewSell("AAPL", domain.AssetStock, 6-1e-7, 160, domain.CurrencyUSD, d))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Len(t, positions, before-1)

	_, _, err = ApplySell(positions, testingpkg.NewSell("TSLA", domain.AssetStock, 1, 1, domain.CurrencyUSD, d))
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)
}

func TestRemovePosition(t *testing.T) {
	positions := testingpkg.NewPositionFixtures()

	out, ok := RemovePosition(positions, "ftd-1")
	assert.True(t, ok)
	assert.Len(t, out, len(positions)-1)

	_, ok = RemovePosition(out, "ftd-1")
	assert.False(t, ok)
}
