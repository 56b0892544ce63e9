package errors

// Redis-specific helpers for classifying go-redis errors.
// The ingestion pipeline treats queue/hot-tier unavailability as transient:
// the message stays unacknowledged and a future claim retries it.

import (
	"context"
	stderrs "errors"
	"io"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"
)

// IsRedisNil reports whether err is the redis "no result" sentinel
// (empty read, missing key). Not an error condition for callers
func IsRedisNil(err error) bool { return stderrs.Is(err, redis.Nil) }

// IsBusyGroup reports whether err is the consumer-group-already-exists reply.
// Expected on every startup after the first; swallowed by the queue adapter
func IsBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(Root(err).Error(), "BUSYGROUP")
}

// IsRedisTransient reports whether a redis error is worth retrying
// (connection loss, cluster state churn, readonly replica)
func IsRedisTransient(err error) bool {
	if err == nil || stderrs.Is(err, redis.Nil) {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	root := Root(err)
	var netErr net.Error
	if stderrs.As(root, &netErr) {
		return true
	}
	if stderrs.Is(root, io.EOF) || stderrs.Is(root, io.ErrUnexpectedEOF) {
		return true
	}

	s := root.Error()
	switch {
	case strings.HasPrefix(s, "LOADING"),
		strings.HasPrefix(s, "READONLY"),
		strings.HasPrefix(s, "CLUSTERDOWN"),
		strings.HasPrefix(s, "TRYAGAIN"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "broken pipe"):
		return true
	default:
		return false
	}
}

// FromRedis wraps a redis error with a mapped ErrorCode and message.
// If err is nil or the nil sentinel, returns nil
func FromRedis(err error, msg string) error {
	if err == nil || stderrs.Is(err, redis.Nil) {
		return nil
	}
	if IsRedisTransient(err) {
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeUnknown, msg)
}
