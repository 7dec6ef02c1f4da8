// Package polygon downloads daily FX aggregates from the Polygon.io REST
// API. Responses are returned as raw bytes; parsing happens downstream.
package polygon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrMissingAPIKey = errors.New("polygon: missing api key")
	ErrMissingSymbol = errors.New("polygon: missing symbol")
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("polygon http %d: %s", e.Status, e.Body)
}

// Client calls the aggregates endpoint with the API key as a query
// parameter. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient builds a Client from cfg, filling in the default base URL and
// timeout. It fails with ErrMissingAPIKey when cfg.APIKey is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.polygon.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: cli, apiKey: cfg.APIKey}, nil
}

// DailyAggregates fetches one-day bars for the currency pair symbol (for
// example EURUSD) between from and to inclusive, both YYYY-MM-DD.
func (c *Client) DailyAggregates(ctx context.Context, symbol, from, to string) ([]byte, error) {
	if symbol == "" {
		return nil, ErrMissingSymbol
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return nil, fmt.Errorf("polygon: bad date %q: %w", d, err)
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"ticker": "C:" + symbol,
			"from":   from,
			"to":     to,
		}).
		SetQueryParam("apiKey", c.apiKey).
		Get("/v2/aggs/ticker/{ticker}/range/1/day/{from}/{to}")
	if err != nil {
		return nil, fmt.Errorf("aggregates %s: %w", symbol, err)
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		body := strings.TrimSpace(string(resp.Body()))
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, &HTTPError{Status: resp.StatusCode(), Body: body}
	}

	return resp.Body(), nil
}
