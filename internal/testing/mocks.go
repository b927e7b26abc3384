package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/cartera/internal/domain"
)

// MockPriceLookup serves fixed closing prices and records each lookup.
type MockPriceLookup struct {
	mu     sync.RWMutex
	closes map[string]float64
	errs   map[string]error
	calls  []string
}

// NewMockPriceLookup creates an empty price lookup.
func NewMockPriceLookup() *MockPriceLookup {
	return &MockPriceLookup{
		closes: make(map[string]float64),
		errs:   make(map[string]error),
	}
}

// SetClose makes symbol resolve to a single bar closing at price.
func (m *MockPriceLookup) SetClose(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes[symbol] = price
}

// SetError makes lookups for symbol fail with err.
func (m *MockPriceLookup) SetError(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
}

// Calls returns the symbols looked up so far, in order.
func (m *MockPriceLookup) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// GetPriceHistory implements domain.PriceLookup. Unknown symbols yield no bars.
func (m *MockPriceLookup) GetPriceHistory(_ context.Context, symbol string, _ int) ([]domain.PriceBar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, symbol)

	if err, ok := m.errs[symbol]; ok {
		return nil, err
	}
	price, ok := m.closes[symbol]
	if !ok {
		return nil, nil
	}
	return []domain.PriceBar{{Date: FixtureDate, Open: price, High: price, Low: price, Close: price}}, nil
}

// MockConverter converts with fixed rates keyed "FROM/TO".
type MockConverter struct {
	mu    sync.RWMutex
	rates map[string]float64
}

// NewMockConverter creates a converter with no rates.
func NewMockConverter() *MockConverter {
	return &MockConverter{rates: make(map[string]float64)}
}

// SetRate sets the multiplier applied to amounts converted from -> to.
func (m *MockConverter) SetRate(from, to domain.Currency, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[string(from)+"/"+string(to)] = rate
}

// Convert implements domain.CurrencyConverter.
func (m *MockConverter) Convert(_ context.Context, amount float64, from, to domain.Currency) (float64, error) {
	if from == to {
		return amount, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rate, ok := m.rates[string(from)+"/"+string(to)]
	if !ok {
		return 0, fmt.Errorf("no rate for %s/%s", from, to)
	}
	return amount * rate, nil
}
