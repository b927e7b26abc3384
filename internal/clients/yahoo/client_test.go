package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/aristath/cartera/internal/clientdata"
	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1704067200,1704153600,1704240000],
"indicators":{"quote":[{"open":[150,null,158],"high":[152,null,161],"low":[149,null,157],
"close":[151,null,160],"volume":[1000,null,1200]}]}}],"error":null}}`

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ domain.RateLimiter = (*rate.Limiter)(nil)

func TestGetPriceHistory(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/AAPL.BA", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer server.Close()

	db, cleanup := testingpkg.NewTestDB(t, database.NameClientData)
	defer cleanup()
	cache := clientdata.NewRepository(db.Conn(), zerolog.Nop())

	client := NewClient(server.URL, rate.NewLimiter(rate.Inf, 1), cache, zerolog.Nop())

	bars, err := client.GetPriceHistory(context.Background(), "AAPL.BA", 7)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null bars are dropped")
	assert.Equal(t, 151.0, bars[0].Close)
	assert.Equal(t, 160.0, bars[1].Close)
	assert.Equal(t, 1200.0, bars[1].Volume)

	cached, err := client.GetPriceHistory(context.Background(), "AAPL.BA", 7)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetPriceHistory_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil, zerolog.Nop())
	bars, err := client.GetPriceHistory(context.Background(), "NOPE", 7)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestGetPriceHistory_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil, zerolog.Nop())
	_, err := client.GetPriceHistory(context.Background(), "AAPL", 7)
	assert.Error(t, err)
}

func TestGetPriceHistory_LimiterWaitsPerCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer server.Close()

	limiter := new(MockLimiter)
	limiter.On("Wait", mock.Anything).Return(nil).Once()
	limiter.On("Wait", mock.Anything).Return(errors.New("context canceled")).Once()

	client := NewClient(server.URL, limiter, nil, zerolog.Nop())

	_, err := client.GetPriceHistory(context.Background(), "AAPL", 7)
	require.NoError(t, err)
	_, err = client.GetPriceHistory(context.Background(), "AAPL", 7)
	assert.Error(t, err)

	limiter.AssertNumberOfCalls(t, "Wait", 2)
}
