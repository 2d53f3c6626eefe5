// Package quotes provides a client for the external quote oracle API.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://quotes.controle-se.app/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements interfaces.PriceOracle against the quote API.
// FixedIncomeValue is computed locally (see accrual.go) — the accrual formula
// is deterministic and needs no network round trip.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger.
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new quote oracle client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:  common.NewSilentLogger(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quoteResponse is the wire format of the /quote endpoint.
type quoteResponse struct {
	Success  bool        `json:"success"`
	Price    flexFloat64 `json:"price"`
	Currency string      `json:"currency"`
}

// Quote fetches the price of an asset at a date (or datetime, for intraday
// lookups). A zero date requests the current quote.
func (c *Client) Quote(ctx context.Context, symbol, category string, date time.Time, dateTime time.Time) (interfaces.QuoteResult, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("category", category)
	if !dateTime.IsZero() {
		params.Set("datetime", dateTime.Format("2006-01-02T15:04:05"))
	} else if !date.IsZero() {
		params.Set("date", date.Format("2006-01-02"))
	}

	var resp quoteResponse
	if err := c.get(ctx, "/quote", params, &resp); err != nil {
		return interfaces.QuoteResult{}, err
	}

	return interfaces.QuoteResult{
		Success:  resp.Success && resp.Price > 0,
		Price:    float64(resp.Price),
		Currency: resp.Currency,
	}, nil
}

// rateResponse is the wire format of the /fx endpoint.
type rateResponse struct {
	Rate flexFloat64 `json:"rate"`
}

// ExchangeRate fetches the conversion rate between two currencies.
// Identical currencies short-circuit to 1 without a request.
func (c *Client) ExchangeRate(ctx context.Context, from, to string) (float64, error) {
	if from == to || from == "" || to == "" {
		return 1, nil
	}

	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)

	var resp rateResponse
	if err := c.get(ctx, "/fx", params, &resp); err != nil {
		return 0, err
	}
	if resp.Rate <= 0 {
		return 0, fmt.Errorf("no exchange rate available for %s/%s", from, to)
	}
	return float64(resp.Rate), nil
}

// get performs a rate-limited GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params.Set("api_token", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quote API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("quote API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode quote API response: %w", err)
	}

	c.logger.Debug().
		Str("path", path).
		Dur("elapsed", time.Since(start)).
		Msg("Quote API request complete")
	return nil
}

// Ensure Client implements PriceOracle
var _ interfaces.PriceOracle = (*Client)(nil)
