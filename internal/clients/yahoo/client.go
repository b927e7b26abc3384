// Package yahoo provides daily price bars from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/clientdata"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// DefaultBaseURL is the chart endpoint; the symbol is appended as a path segment.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Client is a Yahoo Finance chart API client. It implements domain.PriceLookup.
type Client struct {
	baseURL   string
	client    *http.Client
	limiter   domain.RateLimiter
	cacheRepo *clientdata.Repository
	now       func() time.Time
	log       zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
// limiter and cacheRepo are optional. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, limiter domain.RateLimiter, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   limiter,
		cacheRepo: cacheRepo,
		now:       time.Now,
		log:       log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse is the subset of the chart payload we read. Yahoo emits null
// for missing bars, hence the pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetPriceHistory returns daily bars for the last days calendar days, oldest
// first. An unknown symbol yields an empty series and no error.
func (c *Client) GetPriceHistory(ctx context.Context, symbol string, days int) ([]domain.PriceBar, error) {
	if days <= 0 {
		days = 1
	}
	cacheKey := symbol + ":" + strconv.Itoa(days)

	if c.cacheRepo != nil {
		var cached []domain.PriceBar
		found, err := c.cacheRepo.GetIfFresh(clientdata.TablePriceHistory, cacheKey, &cached)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to read price cache")
		} else if found {
			c.log.Debug().Str("symbol", symbol).Int("bars", len(cached)).Msg("Cache hit")
			return cached, nil
		}
	}

	bars, err := c.fetch(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	if c.cacheRepo != nil && len(bars) > 0 {
		if err := c.cacheRepo.Store(clientdata.TablePriceHistory, cacheKey, bars, clientdata.TTLPriceHistory); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price history")
		}
	}
	return bars, nil
}

func (c *Client) fetch(ctx context.Context, symbol string, days int) ([]domain.PriceBar, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	end := c.now()
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", strconv.FormatInt(end.AddDate(0, 0, -days).Unix(), 10))
	params.Add("period2", strconv.FormatInt(end.Unix(), 10))
	reqURL := c.baseURL + "/" + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug().Str("symbol", symbol).Msg("Symbol not found")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo returned status %d: %s", resp.StatusCode, string(body))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error %s: %s", result.Chart.Error.Code, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		c.log.Debug().Str("symbol", symbol).Msg("No price data returned")
		return nil, nil
	}

	chart := result.Chart.Result[0]
	quote := chart.Indicators.Quote[0]
	at := func(series []*float64, i int) float64 {
		if i >= len(series) || series[i] == nil {
			return 0
		}
		return *series[i]
	}

	bars := make([]domain.PriceBar, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		closePrice := at(quote.Close, i)
		if closePrice == 0 || !utils.IsFinite(closePrice) {
			continue
		}
		bars = append(bars, domain.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  closePrice,
			Volume: at(quote.Volume, i),
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("days", days).
		Int("bars", len(bars)).
		Msg("Fetched price history")

	return bars, nil
}
