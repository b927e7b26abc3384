package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/modules/snapshots"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

type stubPortfolio struct {
	total domain.CurrencyAmounts
}

func (s *stubPortfolio) Valuation(context.Context, string, time.Time) (*portfolio.Valuation, error) {
	return &portfolio.Valuation{Total: s.total, Skipped: []portfolio.SkippedPosition{}}, nil
}

func (s *stubPortfolio) GetCash(string) (domain.CurrencyAmounts, error) {
	return domain.CurrencyAmounts{ARS: 100}, nil
}

type stubLedger struct{}

func (stubLedger) List(string) (domain.TransactionList, error) {
	return domain.TransactionList{
		testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 150, domain.CurrencyUSD, testingpkg.FixtureDate),
	}, nil
}

func setupTestHandler(t *testing.T) (*Handler, *stubPortfolio) {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t, database.NameHistory)
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	repo := snapshots.NewRepository(db.Conn(), log)
	stub := &stubPortfolio{total: domain.CurrencyAmounts{USD: 1600}}
	service := snapshots.NewService(repo, stub, stubLedger{}, snapshots.NewNormalizer(repo, nil, log), nil, log)

	return NewHandler(service, log), stub
}

func newRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func do(t *testing.T, router chi.Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	handler, _ := setupTestHandler(t)

	router := chi.NewRouter()

	// Should not panic
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}

func TestHandlers_SnapshotLifecycle(t *testing.T) {
	handler, stub := setupTestHandler(t)
	router := newRouter(handler)

	rec := do(t, router, http.MethodGet, "/users/u1/snapshots/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i, usd := range []float64{1600, 1650, 1700} {
		stub.total.USD = usd
		day := testingpkg.FixtureDate.AddDate(0, 0, i)
		handler.SetClock(func() time.Time { return day.Add(23 * time.Hour) })
		rec = do(t, router, http.MethodPost, "/users/u1/snapshots?date="+day.Format("2006-01-02"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/users/u1/snapshots?from=2024-01-02&to=2024-01-03")
	require.Equal(t, http.StatusOK, rec.Code)
	var listBody struct {
		Data struct {
			Records []domain.DailyRecord `json:"records"`
			Count   int                  `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listBody))
	assert.Equal(t, 2, listBody.Data.Count)

	rec = do(t, router, http.MethodPost, "/users/u1/snapshots/normalize?strategy=cumulative_diff")
	require.Equal(t, http.StatusOK, rec.Code)
	var normBody struct {
		Data snapshots.NormalizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &normBody))
	assert.Equal(t, 3, normBody.Data.Corrected)
	assert.True(t, normBody.Data.Persisted)

	rec = do(t, router, http.MethodGet, "/users/u1/snapshots/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest struct {
		Data domain.DailyRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	g, ok := latest.Data.NetGains.Get(domain.CurrencyUSD)
	require.True(t, ok)
	assert.Equal(t, 100.0, g)

	rec = do(t, router, http.MethodGet, "/users/u1/snapshots/trend?currency=USD&period=2")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/u1/snapshots/summary?currency=USD")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/u1/snapshots/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))
	userID, records, err := snapshots.DecodeHistory(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Len(t, records, 3)
}

func TestHandlers_TakeSnapshotOnlyForToday(t *testing.T) {
	handler, _ := setupTestHandler(t)
	handler.SetClock(func() time.Time { return testingpkg.FixtureDate.AddDate(0, 0, 5).Add(9 * time.Hour) })
	router := newRouter(handler)

	rec := do(t, router, http.MethodPost, "/users/u1/snapshots?date=2024-01-03")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-01-06")

	rec = do(t, router, http.MethodPost, "/users/u1/snapshots?date=2024-01-07")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/u1/snapshots")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	rec = do(t, router, http.MethodPost, "/users/u1/snapshots?date=2024-01-06")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/users/u1/snapshots")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Data domain.DailyRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-01-06", body.Data.Date.String())
}

func TestHandlers_BadRequests(t *testing.T) {
	handler, _ := setupTestHandler(t)
	router := newRouter(handler)

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"missing strategy", http.MethodPost, "/users/u1/snapshots/normalize"},
		{"unknown strategy", http.MethodPost, "/users/u1/snapshots/normalize?strategy=latest"},
		{"bad date", http.MethodPost, "/users/u1/snapshots?date=01-01-2024"},
		{"bad currency", http.MethodGet, "/users/u1/snapshots/summary?currency=EUR"},
		{"bad period", http.MethodGet, "/users/u1/snapshots/trend?period=1"},
		{"inverted range", http.MethodGet, "/users/u1/snapshots?from=2024-02-01&to=2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
