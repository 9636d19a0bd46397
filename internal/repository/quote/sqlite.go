package quote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/TimChild/papertrade-quotes/internal/quote"
)

// timeFormat is a fixed-width RFC 3339 layout. The monotonic guard in Put
// compares observed_at lexicographically, so the encoding must not trim
// trailing zeros the way RFC3339Nano does ("...00Z" would sort after the
// strictly newer "...00.5Z").
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Repository is the sqlite-backed durable store. It keeps exactly one row per
// ticker: the last known good price, retained until overwritten by a newer
// observation.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Put upserts the price for a ticker. An incoming observation strictly older
// than the stored one is discarded, so concurrent resolutions cannot regress
// the last known price.
func (r *Repository) Put(ctx context.Context, p domain.PricePoint) error {
	const query = `INSERT INTO quotes (ticker, price, observed_at, vendor, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			price = excluded.price,
			observed_at = excluded.observed_at,
			vendor = excluded.vendor,
			updated_at = excluded.updated_at
		WHERE excluded.observed_at >= quotes.observed_at`

	_, err := r.db.ExecContext(ctx, query,
		string(p.Ticker),
		p.Price.String(),
		p.ObservedAt.UTC().Format(timeFormat),
		p.Vendor,
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("save quote %s: %w", p.Ticker, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, ticker domain.Ticker) (domain.PricePoint, bool, error) {
	const query = `SELECT price, observed_at, vendor FROM quotes WHERE ticker = ?`

	var priceStr, observedStr, vendor string
	err := r.db.QueryRowContext(ctx, query, string(ticker)).Scan(&priceStr, &observedStr, &vendor)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PricePoint{}, false, nil
	}
	if err != nil {
		return domain.PricePoint{}, false, fmt.Errorf("get quote %s: %w", ticker, err)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.PricePoint{}, false, fmt.Errorf("parse stored price %q for %s: %w", priceStr, ticker, err)
	}
	observedAt, err := time.Parse(time.RFC3339Nano, observedStr)
	if err != nil {
		return domain.PricePoint{}, false, fmt.Errorf("parse stored timestamp %q for %s: %w", observedStr, ticker, err)
	}

	return domain.PricePoint{
		Ticker:     ticker,
		Price:      price,
		ObservedAt: observedAt,
		Vendor:     vendor,
	}, true, nil
}
