package quote

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TimChild/papertrade-quotes/internal/apperror"
)

const defaultFetchTimeout = 10 * time.Second

// Service resolves the current price for a ticker by walking the cache tiers
// and falling back to the provider. Concurrent resolves for the same ticker
// share one provider call.
type Service struct {
	volatile     VolatileStore
	durable      DurableStore
	provider     Provider
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithFetchTimeout bounds the detached provider fetch started by a resolve.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) { s.fetchTimeout = d }
}

// NewService creates a resolver. ttl is the freshness window applied to every
// volatile-tier write, whether the value came from a live fetch or was
// promoted from the durable tier.
func NewService(volatile VolatileStore, durable DurableStore, provider Provider, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		volatile:     volatile,
		durable:      durable,
		provider:     provider,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve returns the most appropriate price for raw, tagged with the tier
// that satisfied this specific request.
func (s *Service) Resolve(ctx context.Context, raw string) (PricePoint, error) {
	ticker, err := NormalizeTicker(raw)
	if err != nil {
		return PricePoint{}, err
	}

	if p, ok := s.volatileGet(ctx, ticker); ok {
		return p.WithSource(SourceVolatileCache), nil
	}

	if p, ok := s.durableGet(ctx, ticker); ok {
		s.promote(ctx, p)
		return p.WithSource(SourceDurableCache), nil
	}

	p, err := s.fetchShared(ctx, ticker)
	if err != nil {
		// Graceful degradation: a durable entry may have appeared while the
		// fetch was in flight. Only transient provider failures qualify;
		// RateLimited and TickerNotFound propagate untouched.
		if apperror.CodeOf(err) == apperror.ProviderUnavailable {
			if p, ok := s.durableGet(ctx, ticker); ok {
				slog.Warn("provider unavailable, serving last known price",
					"ticker", ticker, "observedAt", p.ObservedAt, "error", err)
				return p.WithSource(SourceDurableCache), nil
			}
		}
		return PricePoint{}, err
	}
	return p, nil
}

// fetchShared collapses concurrent fetches for the same ticker into one
// provider call. A cancelled caller abandons its wait without cancelling the
// fetch other callers are awaiting.
func (s *Service) fetchShared(ctx context.Context, ticker Ticker) (PricePoint, error) {
	ch := s.group.DoChan(string(ticker), func() (any, error) {
		// Detach from the initiating caller so its cancellation cannot abort
		// a fetch shared with other waiters.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		p, err := s.provider.Fetch(fctx, ticker)
		if err != nil {
			return nil, err
		}
		p.Ticker = ticker
		p = p.WithSource(SourceLive)
		s.writeThrough(fctx, p)
		return p, nil
	})

	select {
	case <-ctx.Done():
		return PricePoint{}, apperror.Wrap(apperror.ProviderUnavailable, "price lookup abandoned", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return PricePoint{}, res.Err
		}
		return res.Val.(PricePoint), nil
	}
}

// writeThrough populates both cache tiers after a successful live fetch.
// Store failures are logged, not surfaced; the caller already has the value.
func (s *Service) writeThrough(ctx context.Context, p PricePoint) {
	if err := s.volatile.Put(ctx, p, s.ttl); err != nil {
		slog.Warn("volatile cache write failed", "ticker", p.Ticker, "error", err)
	}
	if err := s.durable.Put(ctx, p); err != nil {
		slog.Warn("durable cache write failed", "ticker", p.Ticker, "error", err)
	}
}

// promote repopulates the volatile tier with a value served from the durable
// tier, using the same freshness window as a live fetch.
func (s *Service) promote(ctx context.Context, p PricePoint) {
	if err := s.volatile.Put(ctx, p.WithSource(SourceVolatileCache), s.ttl); err != nil {
		slog.Warn("volatile cache promotion failed", "ticker", p.Ticker, "error", err)
	}
}

// volatileGet treats store errors as a miss for the tier.
func (s *Service) volatileGet(ctx context.Context, ticker Ticker) (PricePoint, bool) {
	p, ok, err := s.volatile.Get(ctx, ticker)
	if err != nil {
		slog.Warn("volatile cache read failed", "ticker", ticker, "error", err)
		return PricePoint{}, false
	}
	return p, ok
}

func (s *Service) durableGet(ctx context.Context, ticker Ticker) (PricePoint, bool) {
	p, ok, err := s.durable.Get(ctx, ticker)
	if err != nil {
		slog.Warn("durable cache read failed", "ticker", ticker, "error", err)
		return PricePoint{}, false
	}
	return p, ok
}
