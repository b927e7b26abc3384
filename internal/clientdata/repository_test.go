package clientdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/database"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

type cachedRate struct {
	Rate      float64   `msgpack:"rate"`
	FetchedAt time.Time `msgpack:"fetched_at"`
}

func newTestRepo(t *testing.T, now time.Time) (*Repository, *sql.DB) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, database.NameClientData)
	t.Cleanup(cleanup)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	repo.SetClock(func() time.Time { return now })
	return repo, db.Conn()
}

func TestStoreAndGetIfFresh(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)

	in := cachedRate{Rate: 1050.5, FetchedAt: now}
	require.NoError(t, repo.Store(TableExchangeRate, "USD:ARS", in, TTLExchangeRate))

	var out cachedRate
	found, err := repo.GetIfFresh(TableExchangeRate, "USD:ARS", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1050.5, out.Rate)
	assert.True(t, out.FetchedAt.Equal(now))
}

func TestGetIfFresh_ExpiredFallsBackToGet(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)

	require.NoError(t, repo.Store(TableExchangeRate, "USD:ARS", cachedRate{Rate: 900}, time.Minute))
	repo.SetClock(func() time.Time { return now.Add(time.Hour) })

	var out cachedRate
	found, err := repo.GetIfFresh(TableExchangeRate, "USD:ARS", &out)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.Get(TableExchangeRate, "USD:ARS", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 900.0, out.Rate)
}

func TestGet_Missing(t *testing.T) {
	repo, _ := newTestRepo(t, time.Now())

	var out cachedRate
	found, err := repo.Get(TablePriceHistory, "AAPL", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Upserts(t *testing.T) {
	repo, db := newTestRepo(t, time.Now())

	require.NoError(t, repo.Store(TablePriceHistory, "AAPL", []float64{1, 2}, time.Hour))
	require.NoError(t, repo.Store(TablePriceHistory, "AAPL", []float64{3}, time.Hour))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM price_history").Scan(&count))
	assert.Equal(t, 1, count)

	var out []float64
	found, err := repo.Get(TablePriceHistory, "AAPL", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []float64{3}, out)
}

func TestInvalidTable(t *testing.T) {
	repo, _ := newTestRepo(t, time.Now())

	err := repo.Store("users; DROP TABLE exchangerate", "k", 1, time.Hour)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")

	_, err = repo.Get("nope", "k", new(int))
	assert.Error(t, err)
	_, err = repo.GetIfFresh("nope", "k", new(int))
	assert.Error(t, err)
	assert.Error(t, repo.Delete("nope", "k"))
	_, err = repo.DeleteExpired("nope", 0)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepo(t, time.Now())

	require.NoError(t, repo.Store(TablePriceHistory, "MSFT", 1.0, time.Hour))
	require.NoError(t, repo.Delete(TablePriceHistory, "MSFT"))

	var out float64
	found, err := repo.Get(TablePriceHistory, "MSFT", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGet_CorruptBlob(t *testing.T) {
	repo, db := newTestRepo(t, time.Now())

	_, err := db.Exec("INSERT INTO exchangerate (pair, data, expires_at) VALUES (?, ?, ?)", "USD:ARS", []byte{0xc1}, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	var out cachedRate
	_, err = repo.Get(TableExchangeRate, "USD:ARS", &out)
	assert.Error(t, err)
}

func TestDeleteAllExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)

	require.NoError(t, repo.Store(TablePriceHistory, "OLD", 1, -time.Hour))
	require.NoError(t, repo.Store(TablePriceHistory, "NEW", 1, time.Hour))
	require.NoError(t, repo.Store(TableExchangeRate, "OLD", 1, -time.Minute))

	results, err := repo.DeleteAllExpired(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[TablePriceHistory])
	assert.Equal(t, int64(1), results[TableExchangeRate])

	var out int
	found, err := repo.Get(TablePriceHistory, "NEW", &out)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDeleteExpired_KeepsEntriesInsideGrace(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)

	require.NoError(t, repo.Store(TableExchangeRate, "RECENT", 1, -time.Hour))
	require.NoError(t, repo.Store(TableExchangeRate, "ANCIENT", 1, -10*24*time.Hour))

	deleted, err := repo.DeleteExpired(TableExchangeRate, StaleGrace)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var out int
	found, err := repo.Get(TableExchangeRate, "RECENT", &out)
	require.NoError(t, err)
	assert.True(t, found, "stale entry inside the grace window is kept")
}
