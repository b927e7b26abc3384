package testing

import (
	"time"

	"github.com/aristath/cartera/internal/domain"
)

// FixtureDate is the start date shared by the position fixtures.
var FixtureDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// NewPositionFixtures returns one position of each tradable and lending variant:
// AAPL on NASDAQ, AAPL.BA on BCBA, AL30, BTCUSDT, a 30-day ARS time deposit and
// a 7-day caución.
func NewPositionFixtures() []domain.Position {
	start := domain.NewDate(FixtureDate)
	return []domain.Position{
		&domain.StockPosition{
			Symbol:   "AAPL",
			Holding:  domain.Holding{Quantity: 10, PurchasePrice: Float64(150)},
			Currency: domain.CurrencyUSD,
			Market:   domain.MarketNASDAQ,
		},
		&domain.StockPosition{
			Symbol:   "AAPL.BA",
			Holding:  domain.Holding{Quantity: 20, PurchasePrice: Float64(9000)},
			Currency: domain.CurrencyARS,
			Market:   domain.MarketBCBA,
		},
		&domain.BondPosition{
			Ticker:   "AL30",
			Holding:  domain.Holding{Quantity: 100, PurchasePrice: Float64(60000)},
			Currency: domain.CurrencyARS,
			Market:   domain.MarketBCBA,
		},
		&domain.CryptoPosition{
			Symbol:  "BTCUSDT",
			Holding: domain.Holding{Quantity: 0.1, AveragePrice: Float64(40000)},
		},
		&domain.FixedTermDepositPosition{LendingTerms: domain.LendingTerms{
			ID:           "ftd-1",
			Provider:     "Banco Nación",
			Amount:       10000,
			AnnualRate:   36.5,
			StartDate:    start,
			MaturityDate: domain.NewDate(FixtureDate.AddDate(0, 0, 30)),
			Currency:     domain.CurrencyARS,
		}},
		&domain.CaucionPosition{LendingTerms: domain.LendingTerms{
			ID:         "cau-1",
			Provider:   "BYMA",
			Amount:     50000,
			AnnualRate: 40,
			StartDate:  start,
			TermDays:   7,
			Currency:   domain.CurrencyARS,
		}},
	}
}

// NewBuy builds a buy trade booked in currency.
func NewBuy(symbol string, assetType domain.AssetType, quantity, price float64, currency domain.Currency, date time.Time) *domain.TradeTransaction {
	return &domain.TradeTransaction{
		TxBase:    domain.TxBase{ID: "buy-" + symbol + "-" + date.Format("20060102"), Date: date, Currency: currency},
		Side:      domain.TxBuy,
		AssetType: assetType,
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
	}
}

// NewSell builds a sell trade booked in currency.
func NewSell(symbol string, assetType domain.AssetType, quantity, price float64, currency domain.Currency, date time.Time) *domain.TradeTransaction {
	tx := NewBuy(symbol, assetType, quantity, price, currency, date)
	tx.ID = "sell-" + symbol + "-" + date.Format("20060102")
	tx.Side = domain.TxSell
	return tx
}
