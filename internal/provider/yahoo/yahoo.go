// Package yahoo implements the live price gateway over the Yahoo Finance v8
// chart API. The current price and its observation time come from the chart
// metadata (regularMarketPrice / regularMarketTime).
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TimChild/papertrade-quotes/internal/apperror"
	"github.com/TimChild/papertrade-quotes/internal/quote"
)

const (
	defaultChartEndpoint = "https://query2.finance.yahoo.com/v8/finance/chart"
	userAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Gateway fetches the current market price from Yahoo Finance.
type Gateway struct {
	client        *http.Client
	chartEndpoint string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithChartEndpoint overrides the default chart API endpoint.
func WithChartEndpoint(ep string) Option {
	return func(g *Gateway) { g.chartEndpoint = ep }
}

// New creates a Gateway with the given options applied.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		client:        &http.Client{Timeout: 30 * time.Second},
		chartEndpoint: defaultChartEndpoint,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Name returns the vendor identifier recorded in PricePoint.Vendor.
func (g *Gateway) Name() string { return "yahoo" }

// chartResponse is the subset of the Yahoo Finance v8 chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch looks up the current price for ticker. Failures are mapped onto the
// resolver's error taxonomy: a confirmed unknown symbol is TickerNotFound,
// upstream throttling is RateLimited, everything transient is
// ProviderUnavailable.
func (g *Gateway) Fetch(ctx context.Context, ticker quote.Ticker) (quote.PricePoint, error) {
	// Normalized tickers may contain "^" (index symbols), which is not a
	// valid raw path character.
	url := fmt.Sprintf("%s/%s?range=1d&interval=1d", g.chartEndpoint, neturl.PathEscape(string(ticker)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return quote.PricePoint{}, apperror.Wrap(apperror.Internal, "build quote request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := g.client.Do(req) //nolint:gosec // URL from internal config
	if err != nil {
		return quote.PricePoint{}, apperror.Wrap(apperror.ProviderUnavailable, "fetch quote", err)
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return quote.PricePoint{}, apperror.New(apperror.TickerNotFound, fmt.Sprintf("unknown ticker %s", ticker))
	case http.StatusTooManyRequests:
		return quote.PricePoint{}, apperror.New(apperror.RateLimited, "quote provider throttled the request")
	default:
		return quote.PricePoint{}, apperror.New(apperror.ProviderUnavailable,
			fmt.Sprintf("quote provider returned HTTP %d", res.StatusCode))
	}

	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return quote.PricePoint{}, apperror.Wrap(apperror.ProviderUnavailable, "decode quote response", err)
	}

	if e := body.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return quote.PricePoint{}, apperror.New(apperror.TickerNotFound, fmt.Sprintf("unknown ticker %s", ticker))
		}
		return quote.PricePoint{}, apperror.New(apperror.ProviderUnavailable,
			fmt.Sprintf("quote provider error: %s: %s", e.Code, e.Description))
	}
	if len(body.Chart.Result) == 0 {
		return quote.PricePoint{}, apperror.New(apperror.ProviderUnavailable, "empty chart result")
	}

	meta := body.Chart.Result[0].Meta
	if meta.RegularMarketPrice < 0 {
		return quote.PricePoint{}, apperror.New(apperror.ProviderUnavailable,
			fmt.Sprintf("negative price %f for %s", meta.RegularMarketPrice, ticker))
	}

	observedAt := time.Unix(meta.RegularMarketTime, 0).UTC()
	if meta.RegularMarketTime == 0 {
		observedAt = time.Now().UTC()
	}

	return quote.PricePoint{
		Ticker:     ticker,
		Price:      decimal.NewFromFloat(meta.RegularMarketPrice),
		ObservedAt: observedAt,
		Source:     quote.SourceLive,
		Vendor:     g.Name(),
	}, nil
}
