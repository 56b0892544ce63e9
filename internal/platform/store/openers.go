package store

import (
	"context"
	"fmt"
	"time"

	"murmur/internal/platform/store/pg"
	"murmur/internal/platform/store/rds"
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
	}, nil)
	if err != nil {
		return nil, err
	}

	// Connection guardrails: ping with retry/backoff using the pool directly
	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	var lastErr error
	backoff := 150 * time.Millisecond
	const ceiling = 2 * time.Second
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			a := newPGAdapter(p) // publish the adapter only after the pool is healthy
			s.PG = a
			return a, nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < ceiling {
			backoff = min(backoff*2, ceiling)
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

// openRDS opens redis and verifies connectivity with the same retry shape
func openRDS(ctx context.Context, cfg Config) (*rds.RDS, error) {
	r, err := rds.Open(ctx, rds.Config{
		Addr:    cfg.RDS.Addr,
		DB:      cfg.RDS.DB,
		AppName: cfg.AppName,
	})
	if err != nil {
		return nil, err
	}

	const attempts = 20
	var lastErr error
	backoff := 150 * time.Millisecond
	const ceiling = 2 * time.Second
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = r.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return r, nil
		}
		if ctx.Err() != nil {
			_ = r.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < ceiling {
			backoff = min(backoff*2, ceiling)
		}
	}

	_ = r.Close()
	return nil, fmt.Errorf("redis ping failed after %d attempts: %w", attempts, lastErr)
}
