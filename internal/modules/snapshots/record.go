// Package snapshots records one portfolio summary per user per day and
// reconciles the stored net gains of that history.
package snapshots

import (
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// Inputs are the raw figures a daily snapshot is built from. Any of them may be
// NaN or ±Inf when it could not be determined.
type Inputs struct {
	TotalValue      domain.CurrencyAmounts
	InvestedCapital domain.CurrencyAmounts
	AvailableCash   domain.CurrencyAmounts
	// Partial is set by the caller when the totals are known to be incomplete,
	// e.g. some position could not be priced.
	Partial bool
}

// BuildRecord turns inputs into a daily record. Non-finite inputs are written
// as 0 and mark the record incomplete. Net gains use the same-day formula and
// are left unset for a currency whose total or invested capital is unknown.
func BuildRecord(date domain.Date, in Inputs) domain.DailyRecord {
	rec := domain.DailyRecord{
		Date:       domain.NewDate(date.Time),
		Incomplete: in.Partial,
	}

	for _, c := range domain.Currencies {
		total := in.TotalValue.Get(c)
		invested := in.InvestedCapital.Get(c)
		cash := in.AvailableCash.Get(c)

		if !utils.IsFinite(total) || !utils.IsFinite(invested) || !utils.IsFinite(cash) {
			rec.Incomplete = true
		}

		rec.TotalValue.Set(c, utils.FiniteOr(total, 0))
		rec.InvestedCapital.Set(c, utils.FiniteOr(invested, 0))
		rec.AvailableCash.Set(c, utils.FiniteOr(cash, 0))

		if utils.IsFinite(total) && utils.IsFinite(invested) {
			rec.NetGains.Set(c, total-invested)
		}
	}

	return rec
}
