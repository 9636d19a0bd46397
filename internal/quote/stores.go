package quote

import (
	"context"
	"time"
)

// VolatileStore is the fast cache tier. Entries expire after the ttl given to
// Put; a Get past expiry must report found=false regardless of any background
// sweeping.
type VolatileStore interface {
	Get(ctx context.Context, ticker Ticker) (PricePoint, bool, error)
	Put(ctx context.Context, p PricePoint, ttl time.Duration) error
}

// DurableStore holds the last known price per ticker and survives restarts.
// Entries have no expiry and are retained until overwritten.
type DurableStore interface {
	Get(ctx context.Context, ticker Ticker) (PricePoint, bool, error)
	Put(ctx context.Context, p PricePoint) error
}

// Provider performs the live price lookup against an external data source.
// Implementations map their failures onto the apperror taxonomy.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ticker Ticker) (PricePoint, error)
}
