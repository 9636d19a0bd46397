package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/TimChild/papertrade-quotes/internal/quote"
)

// Redis is a volatile store backed by a Redis instance, for deployments where
// multiple resolver processes should share the fast tier. Expiry is delegated
// to Redis key TTLs.
type Redis struct {
	rdb *redis.Client
}

type redisRecord struct {
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observedAt"`
	Vendor     string          `json:"vendor,omitempty"`
}

// NewRedis connects and pings the server so a misconfigured address fails at
// startup rather than on the first resolve.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }

func quoteKey(ticker quote.Ticker) string { return "quote:" + string(ticker) }

func (r *Redis) Get(ctx context.Context, ticker quote.Ticker) (quote.PricePoint, bool, error) {
	b, err := r.rdb.Get(ctx, quoteKey(ticker)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quote.PricePoint{}, false, nil
	}
	if err != nil {
		return quote.PricePoint{}, false, fmt.Errorf("redis get %s: %w", ticker, err)
	}
	var rec redisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		// A corrupt entry is a miss; it will be overwritten on the next put.
		return quote.PricePoint{}, false, nil
	}
	return quote.PricePoint{
		Ticker:     ticker,
		Price:      rec.Price,
		ObservedAt: rec.ObservedAt,
		Vendor:     rec.Vendor,
	}, true, nil
}

func (r *Redis) Put(ctx context.Context, p quote.PricePoint, ttl time.Duration) error {
	b, err := json.Marshal(redisRecord{Price: p.Price, ObservedAt: p.ObservedAt, Vendor: p.Vendor})
	if err != nil {
		return fmt.Errorf("marshal quote %s: %w", p.Ticker, err)
	}
	if err := r.rdb.Set(ctx, quoteKey(p.Ticker), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", p.Ticker, err)
	}
	return nil
}

// Health reports whether the Redis connection is usable.
func (r *Redis) Health(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
