package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/cartera/internal/domain"
	testingpkg "github.com/aristath/cartera/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	txs domain.TransactionList
}

func (f *fakeLedger) List(string) (domain.TransactionList, error) { return f.txs, nil }

func (f *fakeLedger) ListBetween(_ string, from, to time.Time) (domain.TransactionList, error) {
	var out domain.TransactionList
	for _, tx := range f.txs {
		if !tx.OccurredAt().Before(from) && !tx.OccurredAt().After(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListByType(_ string, kind domain.TransactionType) (domain.TransactionList, error) {
	var out domain.TransactionList
	for _, tx := range f.txs {
		if tx.Kind() == kind {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeLedger) GetByID(_ string, id string) (domain.Transaction, error) {
	for _, tx := range f.txs {
		if tx.TransactionID() == id {
			return tx, nil
		}
	}
	return nil, nil
}

func setupRouter() *chi.Mux {
	d := testingpkg.FixtureDate
	buy := testingpkg.NewBuy("AAPL", domain.AssetStock, 10, 150, domain.CurrencyUSD, d)
	buy.CommissionPct = testingpkg.Float64(1)
	sell := testingpkg.NewSell("AAPL", domain.AssetStock, 5, 200, domain.CurrencyUSD, d.AddDate(0, 0, 2))

	handler := NewHandler(&fakeLedger{txs: domain.TransactionList{buy, sell}}, zerolog.Nop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestHandleGetTransactions(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest("GET", "/users/u1/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	data := decode(t, w)
	assert.Equal(t, float64(2), data["count"])
	txs := data["transactions"].([]interface{})
	assert.Equal(t, "Buy", txs[0].(map[string]interface{})["type"])
}

func TestHandleGetTransactions_ByType(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest("GET", "/users/u1/transactions?type=Sell", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestHandleGetTransactions_InvalidDate(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest("GET", "/users/u1/transactions?from=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetTransaction_NotFound(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest("GET", "/users/u1/transactions/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetCapital(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest("GET", "/users/u1/capital", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)

	invested := data["invested_capital"].(map[string]interface{})
	contributions := data["net_contributions"].(map[string]interface{})
	assert.InDelta(t, 515.0, invested["usd"], 1e-9)
	assert.InDelta(t, 500.0, contributions["usd"], 1e-9)
}

func TestHandleGetDailyCapital(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest("GET", "/users/u1/capital/daily?from=2024-01-01&to=2024-01-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)
	assert.Equal(t, float64(3), data["count"])
}
