package capital

import (
	"sort"
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// DailyCapital is the cumulative invested capital at the end of one day.
type DailyCapital struct {
	Date time.Time `json:"date"`
	ARS  float64   `json:"ars"`
	USD  float64   `json:"usd"`
}

// DailyInvestedCapital walks the ledger in date order and emits one entry per
// calendar day from `from` through `to` inclusive. Days without transactions
// carry the previous total forward. Transactions dated before `from` seed the
// opening balance.
func DailyInvestedCapital(txs []domain.Transaction, from, to time.Time) []DailyCapital {
	days := utils.CalendarDays(from, to)
	if len(days) == 0 {
		return nil
	}

	sorted := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			sorted = append(sorted, tx)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt().Before(sorted[j].OccurredAt())
	})

	v := &investedVisitor{attribution: AttributeToFunding}
	series := make([]DailyCapital, 0, len(days))
	next := 0
	for _, day := range days {
		endOfDay := day.AddDate(0, 0, 1)
		for next < len(sorted) && sorted[next].OccurredAt().Before(endOfDay) {
			sorted[next].Accept(v)
			next++
		}
		series = append(series, DailyCapital{Date: day, ARS: v.totals.ARS, USD: v.totals.USD})
	}
	return series
}
