package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/TimChild/papertrade-quotes/internal/cache"
	"github.com/TimChild/papertrade-quotes/internal/config"
	"github.com/TimChild/papertrade-quotes/internal/platform/sqlite"
	"github.com/TimChild/papertrade-quotes/internal/provider/ratelimit"
	"github.com/TimChild/papertrade-quotes/internal/provider/yahoo"
	"github.com/TimChild/papertrade-quotes/internal/quote"
	quoterepo "github.com/TimChild/papertrade-quotes/internal/repository/quote"
	"github.com/TimChild/papertrade-quotes/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	// Root context: cancelled on SIGINT/SIGTERM so in-flight resolves stop
	// promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Durable store
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	durable := quoterepo.NewRepository(db.DB)

	// Volatile store: Redis when configured and reachable, in-memory otherwise.
	var volatile quote.VolatileStore
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(rootCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis not available, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			slog.Info("redis cache connected", "addr", cfg.RedisAddr)
			volatile = rc
			defer func() { _ = rc.Close() }()
		}
	}
	if volatile == nil {
		mem := cache.NewMemory()
		defer mem.Close()
		volatile = mem
	}

	// Provider gateway, optionally gated by a token bucket to protect the
	// metered upstream.
	var gwOpts []yahoo.Option
	if cfg.QuoteEndpoint != "" {
		gwOpts = append(gwOpts, yahoo.WithChartEndpoint(cfg.QuoteEndpoint))
	}
	var provider quote.Provider = yahoo.New(gwOpts...)
	if cfg.QuoteMaxRPM > 0 {
		rate := float64(cfg.QuoteMaxRPM) / 60.0
		provider = &ratelimit.Provider{
			Next:   provider,
			Bucket: ratelimit.NewTokenBucket(rate, cfg.QuoteBurst),
		}
	}

	resolver := quote.NewService(volatile, durable, provider, cfg.CacheTTL,
		quote.WithFetchTimeout(cfg.QuoteTimeout))

	srv := server.New(rootCtx, cfg.Port, resolver)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "cacheTTL", cfg.CacheTTL.String())
	<-done

	// Cancel root context first so in-flight requests begin winding down,
	// then drain connections with a deadline.
	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
