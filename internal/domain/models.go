// Package domain provides the portfolio data model shared by every module.
package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Currency is one of the two bookkeeping currencies.
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

// Currencies lists the bookkeeping currencies in reporting order.
var Currencies = []Currency{CurrencyARS, CurrencyUSD}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyARS || c == CurrencyUSD
}

// ParseCurrency normalizes a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// AssetType identifies a position variant.
type AssetType string

const (
	AssetStock            AssetType = "Stock"
	AssetBond             AssetType = "Bond"
	AssetCrypto           AssetType = "Crypto"
	AssetFixedTermDeposit AssetType = "FixedTermDeposit"
	AssetCaucion          AssetType = "Caucion"
	AssetMutualFund       AssetType = "MutualFund"
	AssetRealEstate       AssetType = "RealEstate"
)

// Market is the venue a tradable position is listed on.
type Market string

const (
	MarketNASDAQ Market = "NASDAQ"
	MarketNYSE   Market = "NYSE"
	MarketBCBA   Market = "BCBA"
)

// Date is a calendar day. It marshals as YYYY-MM-DD and accepts RFC 3339
// timestamps on input.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// String formats the day as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CurrencyAmounts holds one amount per bookkeeping currency.
type CurrencyAmounts struct {
	ARS float64 `json:"ars"`
	USD float64 `json:"usd"`
}

// Get returns the amount for c.
func (a CurrencyAmounts) Get(c Currency) float64 {
	if c == CurrencyUSD {
		return a.USD
	}
	return a.ARS
}

// Add accumulates v into the bucket for c.
func (a *CurrencyAmounts) Add(c Currency, v float64) {
	if c == CurrencyUSD {
		a.USD += v
		return
	}
	a.ARS += v
}

// Set replaces the bucket for c.
func (a *CurrencyAmounts) Set(c Currency, v float64) {
	if c == CurrencyUSD {
		a.USD = v
		return
	}
	a.ARS = v
}

// GainAmounts is like CurrencyAmounts but a currency may be not yet computed.
type GainAmounts struct {
	ARS *float64 `json:"ars"`
	USD *float64 `json:"usd"`
}

// Get returns the gain for c and whether it has been computed.
func (g GainAmounts) Get(c Currency) (float64, bool) {
	p := g.ARS
	if c == CurrencyUSD {
		p = g.USD
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set records the gain for c.
func (g *GainAmounts) Set(c Currency, v float64) {
	if c == CurrencyUSD {
		g.USD = &v
		return
	}
	g.ARS = &v
}

// DailyRecord is the per-day portfolio summary for one user.
//
// NetGains stays nil per currency until computed. Incomplete is set when any
// component could not be determined for that day (an unpriced position, a
// non-finite input); the record is still written with zero substitutes.
type DailyRecord struct {
	Date            Date            `json:"date"`
	TotalValue      CurrencyAmounts `json:"total_value"`
	InvestedCapital CurrencyAmounts `json:"invested_capital"`
	NetGains        GainAmounts     `json:"net_gains"`
	AvailableCash   CurrencyAmounts `json:"available_cash"`
	Incomplete      bool            `json:"incomplete,omitempty"`
}

// AllocationTarget is a percentage split of portfolio value across asset
// classes. Targets produced by the allocation engine sum to exactly 100.
type AllocationTarget struct {
	Stocks   float64 `json:"stocks"`
	Bonds    float64 `json:"bonds"`
	Deposits float64 `json:"deposits"`
	Cash     float64 `json:"cash"`
}

// Cents returns each component in hundredths of a percentage point, in the
// order stocks, bonds, deposits, cash.
func (a AllocationTarget) Cents() [4]int64 {
	return [4]int64{
		int64(math.Round(a.Stocks * 100)),
		int64(math.Round(a.Bonds * 100)),
		int64(math.Round(a.Deposits * 100)),
		int64(math.Round(a.Cash * 100)),
	}
}

// Sum adds the components at two-decimal precision, so a normalized target
// sums to exactly 100.
func (a AllocationTarget) Sum() float64 {
	var total int64
	for _, c := range a.Cents() {
		total += c
	}
	return float64(total) / 100
}
