package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimChild/papertrade-quotes/internal/quote"
)

// fakeClock lets tests move time past the TTL without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func point(ticker quote.Ticker, price float64) quote.PricePoint {
	return quote.PricePoint{
		Ticker:     ticker,
		Price:      decimal.NewFromFloat(price),
		ObservedAt: time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC),
		Source:     quote.SourceLive,
	}
}

func TestMemory_PutGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, point("AAPL", 258.10), time.Minute))

	got, ok, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Price.Equal(decimal.NewFromFloat(258.10)))

	_, ok, err = m.Get(ctx, "MSFT")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_ExpiryIsEnforcedAtReadTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, point("AAPL", 258.10), time.Minute))

	clock.Advance(59 * time.Second)
	_, ok, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, ok, "entry must be served inside the freshness window")

	// No background sweep has run; the read itself must report the miss.
	clock.Advance(2 * time.Second)
	_, ok, err = m.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok, "entry past its TTL must behave as absent")
}

func TestMemory_OverwriteResetsTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, point("AAPL", 258.10), time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, m.Put(ctx, point("AAPL", 259.00), time.Minute))

	clock.Advance(30 * time.Second)
	got, ok, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Price.Equal(decimal.NewFromFloat(259.00)))
}
