package domain

import (
	"context"
	"time"
)

// PriceBar is one OHLC bar of a price series.
type PriceBar struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Open   float64   `json:"open" msgpack:"open"`
	High   float64   `json:"high" msgpack:"high"`
	Low    float64   `json:"low" msgpack:"low"`
	Close  float64   `json:"close" msgpack:"close"`
	Volume float64   `json:"volume" msgpack:"volume"`
}

// PriceLookup resolves recent price bars for a symbol, oldest first.
// A nil or empty series with a nil error means no data is available.
type PriceLookup interface {
	GetPriceHistory(ctx context.Context, symbol string, days int) ([]PriceBar, error)
}

// CurrencyConverter converts an amount between bookkeeping currencies.
// Used only when a crypto purchase is funded in ARS.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to Currency) (float64, error)
}

// RateLimiter throttles outbound calls. *rate.Limiter satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}
