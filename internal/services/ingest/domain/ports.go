package domain

import (
	"context"
	"time"

	"murmur/internal/adapters/queue/redstream"
)

// QueuePort is the consumer-group surface the ingest loops run against.
// Satisfied by the redstream adapter; faked in tests
type QueuePort interface {
	EnsureGroup(ctx context.Context, stream, group string) error
	ReadBatch(
		ctx context.Context, stream, group, consumer string, count int64, block time.Duration,
	) ([]redstream.Message, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
	ClaimStale(
		ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64,
	) ([]redstream.Message, error)
}

// RunnerPort is the consumer loop entrypoint
type RunnerPort interface {
	Run(ctx context.Context) error
}
