package duplicates

import (
	"regexp"
	"strings"

	"github.com/aristath/cartera/internal/domain"
)

var (
	// marketSuffix matches venue suffixes only; share-class markers like .B stay.
	marketSuffix = regexp.MustCompile(`(?i)\.(BA|AR|TO)$`)
	localSuffix  = regexp.MustCompile(`(?i)\.(BA|AR)$`)
)

// BaseTicker strips a .BA, .AR or .TO venue suffix.
func BaseTicker(symbol string) string {
	return marketSuffix.ReplaceAllString(symbol, "")
}

// IsLocalTicker reports whether symbol carries a Buenos Aires venue suffix.
func IsLocalTicker(symbol string) bool {
	return localSuffix.MatchString(symbol)
}

// TickerCurrency infers the trading currency from the venue suffix.
func TickerCurrency(symbol string) domain.Currency {
	if IsLocalTicker(symbol) {
		return domain.CurrencyARS
	}
	return domain.CurrencyUSD
}

// TickerMarket infers the market from the venue suffix.
func TickerMarket(symbol string) domain.Market {
	if IsLocalTicker(symbol) {
		return domain.MarketBCBA
	}
	return domain.MarketNASDAQ
}

// EnsureBASuffix appends .BA unless symbol already carries a local suffix.
func EnsureBASuffix(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || IsLocalTicker(symbol) {
		return symbol
	}
	return symbol + ".BA"
}

// IsSameTicker reports whether two symbols share a base ticker.
func IsSameTicker(a, b string) bool {
	return BaseTicker(a) == BaseTicker(b)
}
