package snapshots

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aristath/cartera/internal/domain"
)

// Strategy names accepted by ParseStrategy.
const (
	StrategySameDay        = "same_day"
	StrategyCumulativeDiff = "cumulative_diff"
)

// ErrUnknownStrategy is returned by ParseStrategy for an unrecognised name.
var ErrUnknownStrategy = errors.New("unknown normalization strategy")

// Strategy re-derives the net gains of a chronologically sorted history.
//
// Two formulas exist for the same field and they disagree whenever invested
// capital moves; callers pick one explicitly.
type Strategy interface {
	Name() string
	// Apply rewrites NetGains in place and returns how many records changed.
	Apply(records []domain.DailyRecord) int
}

// ParseStrategy returns the strategy registered under name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case StrategySameDay:
		return SameDayStrategy{}, nil
	case StrategyCumulativeDiff:
		return CumulativeDiffStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// SameDayStrategy sets each day's net gain to totalValue - investedCapital of
// that same day.
type SameDayStrategy struct{}

func (SameDayStrategy) Name() string { return StrategySameDay }

func (SameDayStrategy) Apply(records []domain.DailyRecord) int {
	changed := 0
	for i := range records {
		r := &records[i]
		if setGains(r,
			r.TotalValue.ARS-r.InvestedCapital.ARS,
			r.TotalValue.USD-r.InvestedCapital.USD,
		) {
			changed++
		}
	}
	return changed
}

// CumulativeDiffStrategy ignores invested capital: day 0 has gain 0 and every
// later day adds the change in total value since the previous record.
type CumulativeDiffStrategy struct{}

func (CumulativeDiffStrategy) Name() string { return StrategyCumulativeDiff }

func (CumulativeDiffStrategy) Apply(records []domain.DailyRecord) int {
	changed := 0
	var ars, usd float64
	for i := range records {
		r := &records[i]
		if i > 0 {
			prev := records[i-1]
			ars += r.TotalValue.ARS - prev.TotalValue.ARS
			usd += r.TotalValue.USD - prev.TotalValue.USD
		}
		if setGains(r, ars, usd) {
			changed++
		}
	}
	return changed
}

// setGains stores the gains and reports whether either value differed. Stored
// values round-trip exactly through REAL columns, so equality is exact.
func setGains(r *domain.DailyRecord, ars, usd float64) bool {
	curARS, okARS := r.NetGains.Get(domain.CurrencyARS)
	curUSD, okUSD := r.NetGains.Get(domain.CurrencyUSD)
	if okARS && okUSD && curARS == ars && curUSD == usd {
		return false
	}
	r.NetGains.Set(domain.CurrencyARS, ars)
	r.NetGains.Set(domain.CurrencyUSD, usd)
	return true
}

// sortRecords orders records by date, oldest first.
func sortRecords(records []domain.DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date.Time)
	})
}

func cloneRecords(records []domain.DailyRecord) []domain.DailyRecord {
	out := make([]domain.DailyRecord, len(records))
	for i, r := range records {
		out[i] = r
		if v, ok := r.NetGains.Get(domain.CurrencyARS); ok {
			out[i].NetGains.ARS = &v
		}
		if v, ok := r.NetGains.Get(domain.CurrencyUSD); ok {
			out[i].NetGains.USD = &v
		}
	}
	return out
}
