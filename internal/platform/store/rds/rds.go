// Package rds provides a Redis client used for the ingress streams, the
// hot-tier segment store, speaker-event sets, and the notification delay queue
package rds

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Config configures the redis client
type Config struct {
	Addr    string
	DB      int
	AppName string
}

// RDS is a redis client handle
// callers reach the underlying client via Client; the handle exists so the
// store facade owns open/close lifecycle rather than ambient globals
type RDS struct {
	Client *redis.Client
}

// Open creates a new RDS handle with the given config
func Open(_ context.Context, cfg Config) (*RDS, error) {
	c := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		DB:         cfg.DB,
		ClientName: cfg.AppName,
	})
	return &RDS{Client: c}, nil
}

// Ping reports connectivity
func (r *RDS) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return redis.ErrClosed
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client
func (r *RDS) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
