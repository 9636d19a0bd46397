package cache

import (
	"context"
	"sync"
	"time"

	"github.com/TimChild/papertrade-quotes/internal/quote"
)

const sweepInterval = 30 * time.Second

type entry struct {
	point     quote.PricePoint
	expiresAt time.Time
}

// Memory is an in-process volatile store. Expiry is enforced at read time;
// the background sweeper only reclaims memory.
type Memory struct {
	mu    sync.RWMutex
	items map[quote.Ticker]entry
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[quote.Ticker]entry),
		now:   time.Now,
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	go m.sweep()
	return m
}

func (m *Memory) Get(_ context.Context, ticker quote.Ticker) (quote.PricePoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[ticker]
	if !ok || !m.now().Before(e.expiresAt) {
		return quote.PricePoint{}, false, nil
	}
	return e.point, true, nil
}

func (m *Memory) Put(_ context.Context, p quote.PricePoint, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.Ticker] = entry{point: p, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			cut := m.now()
			m.mu.Lock()
			for k, e := range m.items {
				if !cut.Before(e.expiresAt) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
