package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:             t.TempDir(),
		Port:                8001,
		SnapshotSchedule:    "0 0 23 * * *",
		NormalizeSchedule:   "0 30 23 * * *",
		MaturitySchedule:    "0 0 6 * * *",
		CleanupSchedule:     "0 0 3 * * *",
		MaintenanceSchedule: "0 0 2 * * *",
		NormalizeStrategy:   "same_day",
		DuplicatePolicy:     "exclude",
		PriceRateLimit:      2,
		PriceLookbackDays:   7,
		CommissionPct:       1,
		PurchaseFeePct:      0.05,
	}
}

func TestInitializeDatabases(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Len(t, container.Databases(), 4)
	for _, name := range []string{"ledger", "portfolio", "history", "client_data"} {
		assert.FileExists(t, filepath.Join(cfg.DataDir, name+".db"))
	}
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(cfg.DataDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.DataDir = filepath.Join(blocker, "data")

	_, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.PortfolioService)
	assert.NotNil(t, container.SnapshotService)
	assert.NotNil(t, container.AllocationService)
	assert.Nil(t, container.BackupService, "backups are disabled")

	var names []string
	for _, status := range container.Scheduler.Statuses() {
		names = append(names, status.Name)
	}
	assert.ElementsMatch(t, []string{
		"daily_snapshot",
		"normalize_history",
		"process_maturities",
		"client_data_cleanup",
		"maintenance",
	}, names)
}

func TestWire_ConfiguredSymbolSets(t *testing.T) {
	cfg := testConfig(t)
	cfg.TechSymbols = []string{"NVDA"}

	sets := symbolSets(cfg)
	assert.Equal(t, []string{"NVDA"}, sets.Tech)
	assert.NotEmpty(t, sets.Volatile, "unset lists keep their defaults")
}

func TestHandlers_Mount(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	router := chi.NewRouter()
	for _, h := range Handlers(container, zerolog.Nop()) {
		h.RegisterRoutes(router)
	}

	req := httptest.NewRequest(http.MethodGet, "/currency/available-currencies", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
