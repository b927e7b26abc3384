package snapshots

import (
	"math"
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/markcheno/go-talib"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrendPoint is one day of the total-value series with its moving average.
// MovingAverage is nil until enough days have accumulated.
type TrendPoint struct {
	Date          domain.Date `json:"date"`
	TotalValue    float64     `json:"total_value"`
	MovingAverage *float64    `json:"moving_average"`
}

// Trend computes a simple moving average of the total value in currency over
// period days.
func Trend(records []domain.DailyRecord, currency domain.Currency, period int) []TrendPoint {
	if period < 2 {
		period = 2
	}

	values := totals(records, currency)
	points := make([]TrendPoint, len(records))
	for i, r := range records {
		points[i] = TrendPoint{Date: r.Date, TotalValue: values[i]}
	}
	if len(values) < period {
		return points
	}

	sma := talib.Sma(values, period)
	for i := period - 1; i < len(sma) && i < len(points); i++ {
		if math.IsNaN(sma[i]) {
			continue
		}
		v := sma[i]
		points[i].MovingAverage = &v
	}
	return points
}

// Summary describes a history in one currency.
type Summary struct {
	Currency        domain.Currency `json:"currency"`
	Days            int             `json:"days"`
	From            *domain.Date    `json:"from,omitempty"`
	To              *domain.Date    `json:"to,omitempty"`
	LatestValue     float64         `json:"latest_value"`
	LatestNetGains  *float64        `json:"latest_net_gains"`
	MeanValue       float64         `json:"mean_value"`
	MinValue        float64         `json:"min_value"`
	MaxValue        float64         `json:"max_value"`
	MeanDailyReturn float64         `json:"mean_daily_return"`
	DailyVolatility float64         `json:"daily_volatility"`
	MaxDrawdown     float64         `json:"max_drawdown"`
	IncompleteDays  int             `json:"incomplete_days"`
}

// Summarize computes descriptive statistics of the total value in currency.
// Records must be sorted oldest first.
func Summarize(records []domain.DailyRecord, currency domain.Currency) Summary {
	s := Summary{Currency: currency, Days: len(records)}
	if len(records) == 0 {
		return s
	}

	first, last := records[0].Date, records[len(records)-1].Date
	s.From, s.To = &first, &last

	values := totals(records, currency)
	s.LatestValue = values[len(values)-1]
	if g, ok := records[len(records)-1].NetGains.Get(currency); ok {
		s.LatestNetGains = &g
	}
	s.MeanValue = stat.Mean(values, nil)
	s.MinValue = floats.Min(values)
	s.MaxValue = floats.Max(values)

	for _, r := range records {
		if r.Incomplete {
			s.IncompleteDays++
		}
	}

	returns := dailyReturns(values)
	if len(returns) > 0 {
		s.MeanDailyReturn = stat.Mean(returns, nil)
	}
	if len(returns) > 1 {
		s.DailyVolatility = stat.StdDev(returns, nil)
	}
	s.MaxDrawdown = maxDrawdown(values)

	return s
}

// dailyReturns skips days whose previous value is zero.
func dailyReturns(values []float64) []float64 {
	var out []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}

// maxDrawdown is the largest peak-to-trough fall as a fraction of the peak.
func maxDrawdown(values []float64) float64 {
	var peak, worst float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func totals(records []domain.DailyRecord, currency domain.Currency) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.TotalValue.Get(currency)
	}
	return out
}

// exportRecord is the msgpack shape of a daily record.
type exportRecord struct {
	Date               string   `msgpack:"date"`
	TotalValueARS      float64  `msgpack:"total_value_ars"`
	TotalValueUSD      float64  `msgpack:"total_value_usd"`
	InvestedCapitalARS float64  `msgpack:"invested_capital_ars"`
	InvestedCapitalUSD float64  `msgpack:"invested_capital_usd"`
	NetGainsARS        *float64 `msgpack:"net_gains_ars"`
	NetGainsUSD        *float64 `msgpack:"net_gains_usd"`
	AvailableCashARS   float64  `msgpack:"available_cash_ars"`
	AvailableCashUSD   float64  `msgpack:"available_cash_usd"`
	Incomplete         bool     `msgpack:"incomplete"`
}

type exportFile struct {
	UserID     string         `msgpack:"user_id"`
	ExportedAt time.Time      `msgpack:"exported_at"`
	Records    []exportRecord `msgpack:"records"`
}

// EncodeHistory serialises a history to msgpack.
func EncodeHistory(userID string, records []domain.DailyRecord, exportedAt time.Time) ([]byte, error) {
	file := exportFile{
		UserID:     userID,
		ExportedAt: exportedAt.UTC(),
		Records:    make([]exportRecord, len(records)),
	}
	for i, r := range records {
		file.Records[i] = exportRecord{
			Date:               r.Date.String(),
			TotalValueARS:      r.TotalValue.ARS,
			TotalValueUSD:      r.TotalValue.USD,
			InvestedCapitalARS: r.InvestedCapital.ARS,
			InvestedCapitalUSD: r.InvestedCapital.USD,
			NetGainsARS:        r.NetGains.ARS,
			NetGainsUSD:        r.NetGains.USD,
			AvailableCashARS:   r.AvailableCash.ARS,
			AvailableCashUSD:   r.AvailableCash.USD,
			Incomplete:         r.Incomplete,
		}
	}
	return msgpack.Marshal(&file)
}

// DecodeHistory reads a history written by EncodeHistory.
func DecodeHistory(data []byte) (string, []domain.DailyRecord, error) {
	var file exportFile
	if err := msgpack.Unmarshal(data, &file); err != nil {
		return "", nil, err
	}

	records := make([]domain.DailyRecord, 0, len(file.Records))
	for _, e := range file.Records {
		date, err := domain.ParseDate(e.Date)
		if err != nil {
			return "", nil, err
		}
		rec := domain.DailyRecord{
			Date:            date,
			TotalValue:      domain.CurrencyAmounts{ARS: e.TotalValueARS, USD: e.TotalValueUSD},
			InvestedCapital: domain.CurrencyAmounts{ARS: e.InvestedCapitalARS, USD: e.InvestedCapitalUSD},
			NetGains:        domain.GainAmounts{ARS: e.NetGainsARS, USD: e.NetGainsUSD},
			AvailableCash:   domain.CurrencyAmounts{ARS: e.AvailableCashARS, USD: e.AvailableCashUSD},
			Incomplete:      e.Incomplete,
		}
		records = append(records, rec)
	}
	return file.UserID, records, nil
}
