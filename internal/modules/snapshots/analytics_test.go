package snapshots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/domain"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

func TestTrend(t *testing.T) {
	records := history([]float64{100, 200, 300, 400}, []float64{0, 0, 0, 0})

	points := Trend(records, domain.CurrencyARS, 3)

	require.Len(t, points, 4)
	assert.Nil(t, points[0].MovingAverage)
	assert.Nil(t, points[1].MovingAverage)
	require.NotNil(t, points[2].MovingAverage)
	assert.InDelta(t, 200.0, *points[2].MovingAverage, 1e-9)
	require.NotNil(t, points[3].MovingAverage)
	assert.InDelta(t, 300.0, *points[3].MovingAverage, 1e-9)
}

func TestTrend_ShortHistory(t *testing.T) {
	records := history([]float64{100, 200}, []float64{0, 0})

	points := Trend(records, domain.CurrencyARS, 7)

	require.Len(t, points, 2)
	for _, p := range points {
		assert.Nil(t, p.MovingAverage)
	}
	assert.Empty(t, Trend(nil, domain.CurrencyUSD, 7))
}

func TestSummarize(t *testing.T) {
	records := history([]float64{1000, 1100, 990, 1200}, []float64{1000, 1000, 1000, 1000})
	SameDayStrategy{}.Apply(records)
	records[2].Incomplete = true

	s := Summarize(records, domain.CurrencyARS)

	assert.Equal(t, 4, s.Days)
	assert.Equal(t, "2024-01-01", s.From.String())
	assert.Equal(t, "2024-01-04", s.To.String())
	assert.Equal(t, 1200.0, s.LatestValue)
	require.NotNil(t, s.LatestNetGains)
	assert.Equal(t, 200.0, *s.LatestNetGains)
	assert.InDelta(t, 1072.5, s.MeanValue, 1e-9)
	assert.Equal(t, 990.0, s.MinValue)
	assert.Equal(t, 1200.0, s.MaxValue)
	assert.InDelta(t, 0.1, s.MaxDrawdown, 1e-9)
	assert.Equal(t, 1, s.IncompleteDays)
	assert.Greater(t, s.DailyVolatility, 0.0)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, domain.CurrencyUSD)
	assert.Zero(t, s.Days)
	assert.Nil(t, s.From)
}

func TestEncodeDecodeHistory(t *testing.T) {
	records := history([]float64{1000, 1100}, []float64{900, 900})
	records[1].NetGains.Set(domain.CurrencyUSD, 0.2)
	records[1].Incomplete = true

	data, err := EncodeHistory("u1", records, testingpkg.FixtureDate)
	require.NoError(t, err)

	userID, decoded, err := DecodeHistory(data)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	require.Len(t, decoded, 2)

	_, ok := decoded[0].NetGains.Get(domain.CurrencyUSD)
	assert.False(t, ok)
	g, ok := decoded[1].NetGains.Get(domain.CurrencyUSD)
	assert.True(t, ok)
	assert.Equal(t, 0.2, g)
	assert.True(t, decoded[1].Incomplete)
	assert.Equal(t, records[1].InvestedCapital, decoded[1].InvestedCapital)

	_, _, err = DecodeHistory([]byte{0xc1})
	assert.Error(t, err)
}
