package quote

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TimChild/papertrade-quotes/internal/apperror"
)

// Source tags which tier satisfied a specific request. It describes the
// retrieval mechanism, not the data vendor; provenance lives in Vendor.
type Source string

const (
	SourceVolatileCache Source = "volatile-cache"
	SourceDurableCache  Source = "durable-cache"
	SourceLive          Source = "live"
)

// Ticker is a normalized, uppercase stock symbol. It is the sole lookup key
// across all stores.
type Ticker string

const maxTickerLen = 12

// NormalizeTicker trims and uppercases raw input. It rejects empty symbols
// and symbols containing characters outside [A-Z0-9.^-].
func NormalizeTicker(raw string) (Ticker, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", apperror.New(apperror.InvalidTicker, "ticker cannot be empty")
	}
	if len(s) > maxTickerLen {
		return "", apperror.New(apperror.InvalidTicker, "ticker too long")
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '^' || c == '-':
		default:
			return "", apperror.New(apperror.InvalidTicker, "ticker contains invalid characters")
		}
	}
	return Ticker(s), nil
}

// PricePoint is an immutable snapshot of a ticker's price. ObservedAt is when
// the underlying market value was measured, not when it was cached.
type PricePoint struct {
	Ticker     Ticker          `json:"ticker"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observedAt"`
	Source     Source          `json:"source"`
	Vendor     string          `json:"vendor,omitempty"`
}

// WithSource returns a copy re-tagged for the tier serving this response.
// Vendor is deliberately left untouched.
func (p PricePoint) WithSource(s Source) PricePoint {
	p.Source = s
	return p
}
