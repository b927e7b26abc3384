package snapshots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/events"
	"github.com/aristath/cartera/internal/modules/portfolio"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

type fakePortfolio struct {
	valuation *portfolio.Valuation
	valErr    error
	cash      domain.CurrencyAmounts
	cashErr   error
}

func (f *fakePortfolio) Valuation(ctx context.Context, _ string, _ time.Time) (*portfolio.Valuation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.valuation, f.valErr
}

func (f *fakePortfolio) GetCash(string) (domain.CurrencyAmounts, error) {
	return f.cash, f.cashErr
}

type fakeLedger struct {
	txs domain.TransactionList
	err error
}

func (f *fakeLedger) List(string) (domain.TransactionList, error) {
	return f.txs, f.err
}

type snapshotFixture struct {
	service   *Service
	repo      *Repository
	portfolio *fakePortfolio
	ledger    *fakeLedger
	recorded  []*events.Event
}

func newSnapshotFixture(t *testing.T) *snapshotFixture {
	t.Helper()

	log := zerolog.Nop()
	repo := newTestRepository(t)
	f := &snapshotFixture{
		repo: repo,
		portfolio: &fakePortfolio{
			valuation: &portfolio.Valuation{
				Total:   domain.CurrencyAmounts{ARS: 5150, USD: 1600},
				Skipped: []portfolio.SkippedPosition{},
			},
			cash: domain.CurrencyAmounts{ARS: 200, USD: 10},
		},
		ledger: &fakeLedger{txs: domain.TransactionList{
			testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 150, domain.CurrencyUSD, testingpkg.FixtureDate),
			testingpkg.NewBuy("MSFT", domain.AssetStock, 1, 400, domain.CurrencyUSD, testingpkg.FixtureDate.AddDate(0, 0, 5)),
		}},
	}

	bus := events.NewBus(log)
	bus.Subscribe(events.SnapshotRecorded, func(e *events.Event) { f.recorded = append(f.recorded, e) })
	manager := events.NewManager(bus, log)

	f.service = NewService(repo, f.portfolio, f.ledger, NewNormalizer(repo, manager, log), manager, log)
	return f
}

func TestService_TakeSnapshot(t *testing.T) {
	f := newSnapshotFixture(t)
	asOf := testingpkg.FixtureDate.Add(20 * time.Hour)

	rec, err := f.service.TakeSnapshot(context.Background(), "u1", asOf)
	require.NoError(t, err)

	assert.False(t, rec.Incomplete)
	assert.Equal(t, "2024-01-01", rec.Date.String())
	assert.Equal(t, 1600.0, rec.TotalValue.USD)
	assert.Equal(t, 1500.0, rec.InvestedCapital.USD, "the later buy is not counted yet")
	assert.Equal(t, 10.0, rec.AvailableCash.USD)

	g, ok := rec.NetGains.Get(domain.CurrencyUSD)
	require.True(t, ok)
	assert.Equal(t, 100.0, g)

	stored, err := f.repo.ListRecords("u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.TotalValue, stored[0].TotalValue)

	require.Len(t, f.recorded, 1)
	assert.Equal(t, "u1", f.recorded[0].Data["user_id"])
}

func TestService_TakeSnapshotTwiceSameDayReplaces(t *testing.T) {
	f := newSnapshotFixture(t)
	asOf := testingpkg.FixtureDate

	_, err := f.service.TakeSnapshot(context.Background(), "u1", asOf)
	require.NoError(t, err)

	f.portfolio.valuation.Total.USD = 1700
	_, err = f.service.TakeSnapshot(context.Background(), "u1", asOf.Add(time.Hour))
	require.NoError(t, err)

	history, err := f.service.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1700.0, history[0].TotalValue.USD)
}

func TestService_TakeSnapshotPartialFailuresStillWrite(t *testing.T) {
	f := newSnapshotFixture(t)
	f.portfolio.valErr = errors.New("pricing down")
	f.portfolio.cashErr = errors.New("cash table locked")

	rec, err := f.service.TakeSnapshot(context.Background(), "u1", testingpkg.FixtureDate)
	require.NoError(t, err)

	assert.True(t, rec.Incomplete)
	assert.Zero(t, rec.TotalValue.USD)
	assert.Zero(t, rec.AvailableCash.ARS)
	assert.Equal(t, 1500.0, rec.InvestedCapital.USD)
	_, ok := rec.NetGains.Get(domain.CurrencyUSD)
	assert.False(t, ok)

	stored, err := f.repo.GetRecord("u1", testingpkg.FixtureDate)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Incomplete)
}

func TestService_TakeSnapshotSkippedPositionsMarkIncomplete(t *testing.T) {
	f := newSnapshotFixture(t)
	f.portfolio.valuation.Skipped = []portfolio.SkippedPosition{{Key: "GGAL-ARS", Reason: "no price"}}

	rec, err := f.service.TakeSnapshot(context.Background(), "u1", testingpkg.FixtureDate)
	require.NoError(t, err)
	assert.True(t, rec.Incomplete)
}

func TestService_TakeSnapshotCancelled(t *testing.T) {
	f := newSnapshotFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.TakeSnapshot(ctx, "u1", testingpkg.FixtureDate)
	assert.ErrorIs(t, err, context.Canceled)

	stored, err := f.repo.ListRecords("u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestService_TakeAllContinuesPastFailures(t *testing.T) {
	f := newSnapshotFixture(t)

	written, err := f.service.TakeAll(context.Background(), []string{"u1", "u2"}, testingpkg.FixtureDate)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
}

func TestService_HistoryBetweenAndExport(t *testing.T) {
	f := newSnapshotFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.service.TakeSnapshot(context.Background(), "u1", testingpkg.FixtureDate.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	window, err := f.service.HistoryBetween("u1", testingpkg.FixtureDate.AddDate(0, 0, 1), testingpkg.FixtureDate.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, window, 2)

	data, err := f.service.Export("u1", testingpkg.FixtureDate)
	require.NoError(t, err)

	userID, decoded, err := DecodeHistory(data)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	require.Len(t, decoded, 3)
	assert.Equal(t, "2024-01-03", decoded[2].Date.String())
}

func TestService_NormalizeThroughService(t *testing.T) {
	f := newSnapshotFixture(t)
	for i := 0; i < 3; i++ {
		f.portfolio.valuation.Total.USD = 1600 + float64(i)*50
		_, err := f.service.TakeSnapshot(context.Background(), "u1", testingpkg.FixtureDate.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	result, err := f.service.Normalize(context.Background(), "u1", CumulativeDiffStrategy{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Corrected)

	history, err := f.service.History("u1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 50, 100}, gains(t, history, domain.CurrencyUSD))
}
