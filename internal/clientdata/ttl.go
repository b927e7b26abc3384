package clientdata

import "time"

// TTL constants for cached upstream data.
// These are added to now when storing to calculate expires_at.
const (
	TTLExchangeRate = time.Hour        // 1 hour - Currency exchange rates
	TTLPriceHistory = 15 * time.Minute // 15 minutes - Daily bars, refreshed intraday
)

// StaleGrace is how long an expired entry is kept for stale fallbacks before
// the cleanup job removes it.
const StaleGrace = 7 * 24 * time.Hour
