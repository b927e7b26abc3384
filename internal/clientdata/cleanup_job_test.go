package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	repo, _ := newTestRepo(t, time.Now())
	job := NewCleanupJob(repo, zerolog.Nop())

	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, db := newTestRepo(t, now)
	job := NewCleanupJob(repo, zerolog.Nop())
	job.SetGrace(0)

	for _, table := range AllTables {
		require.NoError(t, repo.Store(table, "expired", 1, -time.Hour))
		require.NoError(t, repo.Store(table, "fresh", 1, time.Hour))
	}

	var countBefore int
	require.NoError(t, db.QueryRow("SELECT (SELECT COUNT(*) FROM price_history) + (SELECT COUNT(*) FROM exchangerate)").Scan(&countBefore))
	assert.Equal(t, 4, countBefore)

	require.NoError(t, job.Run())

	var countAfter int
	require.NoError(t, db.QueryRow("SELECT (SELECT COUNT(*) FROM price_history) + (SELECT COUNT(*) FROM exchangerate)").Scan(&countAfter))
	assert.Equal(t, 2, countAfter)
	assert.Equal(t, int64(1), job.LastDeleted()[TableExchangeRate])
}

func TestCleanupJobRun_DefaultGraceKeepsStaleRates(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)
	job := NewCleanupJob(repo, zerolog.Nop())

	require.NoError(t, repo.Store(TableExchangeRate, "USD:ARS", 1, -2*time.Hour))
	require.NoError(t, job.Run())

	var out int
	found, err := repo.Get(TableExchangeRate, "USD:ARS", &out)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCleanupJobRun_Empty(t *testing.T) {
	repo, _ := newTestRepo(t, time.Now())
	job := NewCleanupJob(repo, zerolog.Nop())

	assert.NoError(t, job.Run())
}
