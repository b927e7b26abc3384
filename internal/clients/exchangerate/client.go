// Package exchangerate converts between bookkeeping currencies using
// exchangerate-api.com, with a persistent cache in client_data.db.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/cartera/internal/clientdata"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public latest-rates endpoint.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// Client for exchangerate-api.com
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new exchangerate-api.com client.
// cacheRepo is optional - if nil, caching is disabled. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "exchangerate").Logger(),
		cacheRepo: cacheRepo,
	}
}

// cachedExchangeRate is the structure stored in the cache
type cachedExchangeRate struct {
	Rate      float64   `msgpack:"rate"`
	FetchedAt time.Time `msgpack:"fetched_at"`
}

// Convert implements domain.CurrencyConverter.
func (c *Client) Convert(ctx context.Context, amount float64, from, to domain.Currency) (float64, error) {
	rate, err := c.GetRate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

// GetRate returns how many units of to one unit of from buys.
// If the API fails, returns stale cached data if available (stale data > no data).
func (c *Client) GetRate(ctx context.Context, from, to domain.Currency) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	cacheKey := string(from) + ":" + string(to)

	if c.cacheRepo != nil {
		var cached cachedExchangeRate
		found, err := c.cacheRepo.GetIfFresh(clientdata.TableExchangeRate, cacheKey, &cached)
		if err != nil {
			c.log.Warn().Err(err).Str("pair", cacheKey).Msg("Failed to read rate cache")
		} else if found {
			c.log.Debug().Str("pair", cacheKey).Float64("rate", cached.Rate).Msg("Cache hit")
			return cached.Rate, nil
		}
	}

	rate, err := c.fetch(ctx, from, to)
	if err != nil {
		if stale, ok := c.getStaleFromCache(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("pair", cacheKey).
				Float64("rate", stale).
				Msg("API failed, using stale cached rate")
			return stale, nil
		}
		return 0, err
	}

	if c.cacheRepo != nil {
		cached := cachedExchangeRate{Rate: rate, FetchedAt: time.Now().UTC()}
		if err := c.cacheRepo.Store(clientdata.TableExchangeRate, cacheKey, cached, clientdata.TTLExchangeRate); err != nil {
			c.log.Warn().Err(err).Str("pair", cacheKey).Msg("Failed to cache exchange rate")
		}
	}

	c.log.Info().Str("pair", cacheKey).Float64("rate", rate).Msg("Fetched rate")
	return rate, nil
}

func (c *Client) fetch(ctx context.Context, from, to domain.Currency) (float64, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, from)
	c.log.Debug().Str("url", url).Msg("Fetching rates")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	rate, exists := result.Rates[string(to)]
	if !exists || !utils.IsFinite(rate) || rate <= 0 {
		return 0, fmt.Errorf("rate not found for %s->%s", from, to)
	}
	return rate, nil
}

// getStaleFromCache retrieves cached rate even if expired.
func (c *Client) getStaleFromCache(cacheKey string) (float64, bool) {
	if c.cacheRepo == nil {
		return 0, false
	}

	var cached cachedExchangeRate
	found, err := c.cacheRepo.Get(clientdata.TableExchangeRate, cacheKey, &cached)
	if err != nil || !found {
		return 0, false
	}
	return cached.Rate, true
}
