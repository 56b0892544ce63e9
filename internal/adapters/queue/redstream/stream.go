// Package redstream adapts Redis Streams consumer groups to the ingestion
// pipeline's queue contract: at-least-once delivery, one consumer per entry
// within a group, explicit acknowledgment, and reclaim of entries whose
// consumer died before acking
package redstream

import (
	"context"
	"time"

	perr "murmur/internal/platform/errors"
	"murmur/internal/platform/store/rds"

	"github.com/redis/go-redis/v9"
)

// Message is one delivered stream entry
type Message struct {
	ID     string
	Values map[string]any
}

// Queue wraps a redis handle with stream group operations
type Queue struct {
	rds *rds.RDS
}

// New constructs a Queue over an open redis handle
func New(r *rds.RDS) *Queue { return &Queue{rds: r} }

// EnsureGroup creates the consumer group (and stream) if missing.
// The group-already-exists reply is expected after first boot and swallowed
func (q *Queue) EnsureGroup(ctx context.Context, stream, group string) error {
	err := q.rds.Client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err == nil || perr.IsBusyGroup(err) {
		return nil
	}
	return perr.FromRedis(err, "create consumer group")
}

// Publish appends an entry to the stream
func (q *Queue) Publish(ctx context.Context, stream string, values map[string]any) (string, error) {
	id, err := q.rds.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", perr.FromRedis(err, "stream publish")
	}
	return id, nil
}

// ReadBatch blocks up to block waiting for new entries and returns up to
// count of them. A timeout is not an error; the batch is just empty
func (q *Queue) ReadBatch(
	ctx context.Context, stream, group, consumer string, count int64, block time.Duration,
) ([]Message, error) {
	res, err := q.rds.Client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if perr.IsRedisNil(err) {
			return nil, nil
		}
		return nil, perr.FromRedis(err, "stream read")
	}

	var out []Message
	for _, s := range res {
		for _, m := range s.Messages {
			out = append(out, Message{ID: m.ID, Values: m.Values})
		}
	}
	return out, nil
}

// Ack removes entries from the group's pending list. Call only after the
// payload was durably absorbed or deliberately dropped
func (q *Queue) Ack(ctx context.Context, stream, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := q.rds.Client.XAck(ctx, stream, group, ids...).Err(); err != nil {
		return perr.FromRedis(err, "stream ack")
	}
	return nil
}

// ClaimStale reassigns pending entries idle longer than minIdle to the
// calling consumer so a crashed consumer's work is retried, not lost
func (q *Queue) ClaimStale(
	ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64,
) ([]Message, error) {
	msgs, _, err := q.rds.Client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if err != nil {
		if perr.IsRedisNil(err) {
			return nil, nil
		}
		return nil, perr.FromRedis(err, "stream claim")
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{ID: m.ID, Values: m.Values})
	}
	return out, nil
}
