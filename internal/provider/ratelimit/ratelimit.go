// Package ratelimit wraps a quote.Provider with a token bucket so bursty
// resolver traffic cannot exceed the metered upstream's request budget.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/TimChild/papertrade-quotes/internal/apperror"
	"github.com/TimChild/papertrade-quotes/internal/quote"
)

// TokenBucket refills at rate tokens per second up to capacity.
type TokenBucket struct {
	rate     float64
	capacity float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
	if tokensPerSecond <= 0 {
		tokensPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:     tokensPerSecond,
		capacity: float64(burst),
		tokens:   float64(burst), // start full to allow an initial burst
		last:     time.Now(),
	}
}

// wait blocks until one token is available or the context is cancelled.
func (tb *TokenBucket) wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
			tb.tokens += elapsed * tb.rate
			if tb.tokens > tb.capacity {
				tb.tokens = tb.capacity
			}
			tb.last = now
		}
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		deficit := 1 - tb.tokens
		tb.mu.Unlock()

		wait := time.Duration(deficit / tb.rate * float64(time.Second))
		if wait <= 0 {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Provider gates fetches on a token bucket before delegating.
type Provider struct {
	Next   quote.Provider
	Bucket *TokenBucket
}

func (p *Provider) Name() string { return p.Next.Name() }

func (p *Provider) Fetch(ctx context.Context, ticker quote.Ticker) (quote.PricePoint, error) {
	if p.Bucket != nil {
		if err := p.Bucket.wait(ctx); err != nil {
			// Waiting out the budget counts as a transient failure, not an
			// upstream throttling signal.
			return quote.PricePoint{}, apperror.Wrap(apperror.ProviderUnavailable, "rate limit wait", err)
		}
	}
	return p.Next.Fetch(ctx, ticker)
}
