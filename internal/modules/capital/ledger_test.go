package capital

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/cartera/internal/domain"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestInvestedCapitalVersusNetContributions(t *testing.T) {
	buy := testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 150, domain.CurrencyUSD, day0)
	sell := testingpkg.NewSell("AAPL", domain.AssetStock, 5, 200, domain.CurrencyUSD, day0.AddDate(0, 0, 10))
	txs := []domain.Transaction{buy, sell}

	assert.InDelta(t, 500.0, InvestedCapital(txs, domain.CurrencyUSD), 1e-9)
	assert.InDelta(t, 500.0, NetContributions(txs, domain.CurrencyUSD), 1e-9)

	buy.CommissionPct = testingpkg.Float64(1)
	assert.InDelta(t, 515.0, InvestedCapital(txs, domain.CurrencyUSD), 1e-9)
	assert.InDelta(t, 500.0, NetContributions(txs, domain.CurrencyUSD), 1e-9)

	assert.Zero(t, InvestedCapital(txs, domain.CurrencyARS))
}

func TestInvestedCapital_CashMovementsAndCreations(t *testing.T) {
	txs := []domain.Transaction{
		&domain.DepositTransaction{TxBase: domain.TxBase{ID: "d1", Date: day0, Currency: domain.CurrencyARS}, Amount: 100000},
		&domain.WithdrawalTransaction{TxBase: domain.TxBase{ID: "w1", Date: day0, Currency: domain.CurrencyARS}, Amount: 5000},
		&domain.CreationTransaction{TxBase: domain.TxBase{ID: "c1", Date: day0, Currency: domain.CurrencyARS}, AssetType: domain.AssetFixedTermDeposit, Amount: 20000},
		&domain.CreationTransaction{TxBase: domain.TxBase{ID: "c2", Date: day0, Currency: domain.CurrencyARS}, AssetType: domain.AssetCaucion, Amount: 30000},
		&domain.CreationTransaction{TxBase: domain.TxBase{ID: "c3", Date: day0, Currency: domain.CurrencyARS}, AssetType: domain.AssetMutualFund, Amount: 7000},
		&domain.DepositTransaction{TxBase: domain.TxBase{ID: "d2", Date: day0.AddDate(0, 0, 30), Currency: domain.CurrencyARS}, Amount: 20000, Source: domain.SourceFixedTermPayout},
	}

	// 20000 + 30000 - 20000; plain deposits, withdrawals and funds are ignored
	assert.InDelta(t, 30000.0, InvestedCapital(txs, domain.CurrencyARS), 1e-9)
	// 100000 - 5000 + 20000 (time deposit only) + 20000 (payout is still a deposit)
	assert.InDelta(t, 135000.0, NetContributions(txs, domain.CurrencyARS), 1e-9)
}

func TestInvestedCapital_CryptoFundedInARS(t *testing.T) {
	// booked like portfolio.Service.Buy: price stays in ARS, Currency flips to USD
	crypto := testingpkg.NewBuy("BTCUSDT", domain.AssetCrypto, 0.01, 100000000, domain.CurrencyUSD, day0)
	crypto.CommissionPct = testingpkg.Float64(1)
	crypto.OriginalCurrency = domain.CurrencyARS
	crypto.OriginalAmount = testingpkg.Float64(1010000)
	crypto.ConvertedAmount = testingpkg.Float64(1010)
	txs := []domain.Transaction{crypto}

	assert.InDelta(t, 1010000.0, InvestedCapital(txs, domain.CurrencyARS), 1e-9)
	assert.Zero(t, InvestedCapital(txs, domain.CurrencyUSD))

	assert.Zero(t, InvestedCapitalSettled(txs, domain.CurrencyARS))
	assert.InDelta(t, 1010.0, InvestedCapitalSettled(txs, domain.CurrencyUSD), 1e-9)

	// gross is quoted in the funding currency
	assert.InDelta(t, 1000000.0, NetContributions(txs, domain.CurrencyARS), 1e-9)
	assert.Zero(t, NetContributions(txs, domain.CurrencyUSD))
}

func TestInvestedCapitalSettled_MatchesLotCostAcrossBuyAndSell(t *testing.T) {
	buy := testingpkg.NewBuy("ETHUSDT", domain.AssetCrypto, 1, 3000000, domain.CurrencyUSD, day0)
	buy.OriginalCurrency = domain.CurrencyARS
	buy.OriginalAmount = testingpkg.Float64(3000000)
	buy.ConvertedAmount = testingpkg.Float64(3000)
	sell := testingpkg.NewSell("ETHUSDT", domain.AssetCrypto, 0.5, 2000, domain.CurrencyUSD, day0.AddDate(0, 0, 5))
	txs := []domain.Transaction{buy, sell}

	assert.InDelta(t, 2000.0, InvestedCapitalSettled(txs, domain.CurrencyUSD), 1e-9)
	assert.InDelta(t, -1000.0, InvestedCapital(txs, domain.CurrencyUSD), 1e-9)
	assert.InDelta(t, 3000000.0, InvestedCapital(txs, domain.CurrencyARS), 1e-9)
}

func TestInvestedCapital_MaturityCreditReturnsPayout(t *testing.T) {
	txs := []domain.Transaction{
		&domain.DepositTransaction{TxBase: domain.TxBase{ID: "d1", Date: day0, Currency: domain.CurrencyARS}, Amount: 10000},
		&domain.CreationTransaction{TxBase: domain.TxBase{ID: "c1", Date: day0, Currency: domain.CurrencyARS}, AssetType: domain.AssetFixedTermDeposit, PositionID: "pf-1", Amount: 10000, AnnualRate: 36.5, TermDays: 30},
		&domain.MaturityCreditTransaction{TxBase: domain.TxBase{ID: "m1", Date: day0.AddDate(0, 0, 30), Currency: domain.CurrencyARS}, CreditType: domain.TxFixedTermCredit, PositionID: "pf-1", Principal: 10000, Interest: 300},
	}

	assert.InDelta(t, -300.0, InvestedCapital(txs, domain.CurrencyARS), 1e-9)
	assert.InDelta(t, -300.0, InvestedCapitalSettled(txs, domain.CurrencyARS), 1e-9)
	// the credit moves cash between accounts the owner already funded
	assert.InDelta(t, 20000.0, NetContributions(txs, domain.CurrencyARS), 1e-9)

	series := DailyInvestedCapital(txs, day0.AddDate(0, 0, 29), day0.AddDate(0, 0, 30))
	assert.Len(t, series, 2)
	assert.InDelta(t, 10000.0, series[0].ARS, 1e-9)
	assert.InDelta(t, -300.0, series[1].ARS, 1e-9)
}

func TestInvestedCapital_IgnoresNilAndNonFinite(t *testing.T) {
	bad := testingpkg.NewBuy("AAPL", domain.AssetStock, 1, 0, domain.CurrencyUSD, day0)
	bad.Price = math.NaN()
	txs := []domain.Transaction{nil, bad, testingpkg.NewBuy("MSFT", domain.AssetStock, 2, 100, domain.CurrencyUSD, day0)}

	assert.InDelta(t, 200.0, InvestedCapital(txs, domain.CurrencyUSD), 1e-9)
	assert.InDelta(t, 200.0, NetContributions(txs, domain.CurrencyUSD), 1e-9)
}

func TestDailyInvestedCapital_CarriesForward(t *testing.T) {
	txs := []domain.Transaction{
		testingpkg.NewSell("AAPL", domain.AssetStock, 5, 200, domain.CurrencyUSD, day0.AddDate(0, 0, 3).Add(15*time.Hour)),
		testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 150, domain.CurrencyUSD, day0.AddDate(0, 0, -2)),
		&domain.CreationTransaction{TxBase: domain.TxBase{ID: "c1", Date: day0.AddDate(0, 0, 1), Currency: domain.CurrencyARS}, AssetType: domain.AssetFixedTermDeposit, Amount: 10000},
	}

	series := DailyInvestedCapital(txs, day0, day0.AddDate(0, 0, 4))

	assert.Len(t, series, 5)
	expectedUSD := []float64{1500, 1500, 1500, 500, 500}
	expectedARS := []float64{0, 10000, 10000, 10000, 10000}
	for i, entry := range series {
		assert.Equal(t, day0.AddDate(0, 0, i), entry.Date)
		assert.InDelta(t, expectedUSD[i], entry.USD, 1e-9, "day %d", i)
		assert.InDelta(t, expectedARS[i], entry.ARS, 1e-9, "day %d", i)
	}

	assert.Nil(t, DailyInvestedCapital(txs, day0, day0.AddDate(0, 0, -1)))
}

func TestFromPositions(t *testing.T) {
	totals := FromPositions(testingpkg.NewPositionFixtures())

	// AAPL 10*150 + BTC 0.1*40000
	assert.InDelta(t, 5500.0, totals.USD, 1e-9)
	// AAPL.BA 20*9000 + AL30 100*60000 + deposit 10000 + caución 50000
	assert.InDelta(t, 6240000.0, totals.ARS, 1e-9)
}
