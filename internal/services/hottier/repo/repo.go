// Package repo implements the hot tier over redis: one hash per segment,
// a per-session index zset scored by start time, a session membership set,
// and a per-session speaker-event zset scored by relative timestamp
package repo

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	perr "murmur/internal/platform/errors"
	"murmur/internal/platform/store/rds"
	"murmur/internal/services/hottier/domain"

	"github.com/redis/go-redis/v9"
)

// Config controls retention
type Config struct {
	// TTL bounds how long an unpromoted segment may linger (default 1h)
	TTL time.Duration
	// SpeakerTTL bounds speaker-event retention (default 24h)
	SpeakerTTL time.Duration
	// Prefix namespaces all keys (default "murmur")
	Prefix string
}

// Redis is the hot tier store
type Redis struct {
	rds *rds.RDS
	cfg Config
}

// New constructs the redis hot tier
func New(r *rds.RDS, cfg Config) *Redis {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.SpeakerTTL <= 0 {
		cfg.SpeakerTTL = 24 * time.Hour
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "murmur"
	}
	return &Redis{rds: r, cfg: cfg}
}

func (r *Redis) segKey(sessionID, member string) string {
	return r.cfg.Prefix + ":hot:" + sessionID + ":" + member
}
func (r *Redis) idxKey(sessionID string) string { return r.cfg.Prefix + ":hotidx:" + sessionID }
func (r *Redis) spkKey(sessionID string) string { return r.cfg.Prefix + ":spk:" + sessionID }
func (r *Redis) sessionsKey() string            { return r.cfg.Prefix + ":hotsessions" }

// Upsert implements domain.Port. The whole record is written in one
// pipelined round trip; a revision replaces the previous state and slides
// the TTL window
func (r *Redis) Upsert(ctx context.Context, seg domain.Segment) error {
	member := seg.Key()
	pipe := r.rds.Client.TxPipeline()
	pipe.SAdd(ctx, r.sessionsKey(), seg.SessionID)
	pipe.HSet(ctx, r.segKey(seg.SessionID, member), map[string]any{
		"session_id":  seg.SessionID,
		"meeting_id":  seg.MeetingID,
		"start_time":  seg.StartTime,
		"end_time":    seg.EndTime,
		"text":        seg.Text,
		"language":    seg.Language,
		"lang_prob":   seg.LanguageProbability,
		"speaker":     seg.Speaker,
		"received_at": seg.ReceivedAt.UnixNano(),
	})
	pipe.Expire(ctx, r.segKey(seg.SessionID, member), r.cfg.TTL)
	pipe.ZAdd(ctx, r.idxKey(seg.SessionID), redis.Z{Score: seg.StartTime, Member: member})
	pipe.Expire(ctx, r.idxKey(seg.SessionID), r.cfg.TTL)
	_, err := pipe.Exec(ctx)
	return perr.FromRedis(err, "hot tier upsert")
}

// SetSpeaker implements domain.Port
func (r *Redis) SetSpeaker(ctx context.Context, sessionID string, start, end float64, speaker string) error {
	key := r.segKey(sessionID, domain.SegmentKey(start, end))
	// single HSET of one field; does not touch received_at
	err := r.rds.Client.HSet(ctx, key, "speaker", speaker).Err()
	return perr.FromRedis(err, "hot tier set speaker")
}

// QueryRange implements domain.Port
func (r *Redis) QueryRange(ctx context.Context, sessionID string, start, end float64) ([]domain.Segment, error) {
	members, err := r.rds.Client.ZRangeByScore(ctx, r.idxKey(sessionID), &redis.ZRangeBy{
		Min: formatScore(start),
		Max: formatScore(end),
	}).Result()
	if err != nil {
		return nil, perr.FromRedis(err, "hot tier range")
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := r.rds.Client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGetAll(ctx, r.segKey(sessionID, m))
	}
	if _, err := pipe.Exec(ctx); err != nil && !perr.IsRedisNil(err) {
		return nil, perr.FromRedis(err, "hot tier fetch")
	}

	out := make([]domain.Segment, 0, len(members))
	for i, c := range cmds {
		fields, err := c.Result()
		if err != nil || len(fields) == 0 {
			// hash expired under the index entry; drop the dangling member
			_ = r.rds.Client.ZRem(ctx, r.idxKey(sessionID), members[i]).Err()
			continue
		}
		out = append(out, parseSegment(fields))
	}
	return out, nil
}

// Evict implements domain.Port
func (r *Redis) Evict(ctx context.Context, sessionID string, start, end float64) error {
	member := domain.SegmentKey(start, end)
	pipe := r.rds.Client.TxPipeline()
	pipe.Del(ctx, r.segKey(sessionID, member))
	pipe.ZRem(ctx, r.idxKey(sessionID), member)
	card := pipe.ZCard(ctx, r.idxKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return perr.FromRedis(err, "hot tier evict")
	}
	if n, err := card.Result(); err == nil && n == 0 {
		_ = r.rds.Client.SRem(ctx, r.sessionsKey(), sessionID).Err()
	}
	return nil
}

// Sessions implements domain.Port
func (r *Redis) Sessions(ctx context.Context) ([]string, error) {
	out, err := r.rds.Client.SMembers(ctx, r.sessionsKey()).Result()
	if err != nil {
		return nil, perr.FromRedis(err, "hot tier sessions")
	}
	return out, nil
}

// speakerMember is the stored zset member shape
type speakerMember struct {
	Speaker string  `json:"speaker"`
	Type    string  `json:"type"`
	At      float64 `json:"at"`
}

// AddSpeakerEvent implements domain.Port
func (r *Redis) AddSpeakerEvent(ctx context.Context, ev domain.SpeakerEvent) error {
	raw, err := json.Marshal(speakerMember{Speaker: ev.Speaker, Type: ev.Type, At: ev.At})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeMalformed, "encode speaker event")
	}
	pipe := r.rds.Client.TxPipeline()
	pipe.ZAdd(ctx, r.spkKey(ev.SessionID), redis.Z{Score: ev.At, Member: string(raw)})
	pipe.Expire(ctx, r.spkKey(ev.SessionID), r.cfg.SpeakerTTL)
	_, err = pipe.Exec(ctx)
	return perr.FromRedis(err, "speaker event add")
}

// SpeakerEvents implements domain.Port
func (r *Redis) SpeakerEvents(ctx context.Context, sessionID string) ([]domain.SpeakerEvent, error) {
	raws, err := r.rds.Client.ZRange(ctx, r.spkKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, perr.FromRedis(err, "speaker events")
	}
	out := make([]domain.SpeakerEvent, 0, len(raws))
	for _, raw := range raws {
		var m speakerMember
		if json.Unmarshal([]byte(raw), &m) != nil {
			continue
		}
		out = append(out, domain.SpeakerEvent{
			SessionID: sessionID,
			Speaker:   m.Speaker,
			Type:      m.Type,
			At:        m.At,
		})
	}
	return out, nil
}

func formatScore(f float64) string {
	switch {
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsInf(f, 1):
		return "+inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func parseSegment(fields map[string]string) domain.Segment {
	seg := domain.Segment{
		SessionID: fields["session_id"],
		Text:      fields["text"],
		Language:  fields["language"],
		Speaker:   fields["speaker"],
	}
	seg.MeetingID, _ = strconv.ParseInt(fields["meeting_id"], 10, 64)
	seg.StartTime, _ = strconv.ParseFloat(fields["start_time"], 64)
	seg.EndTime, _ = strconv.ParseFloat(fields["end_time"], 64)
	seg.LanguageProbability, _ = strconv.ParseFloat(fields["lang_prob"], 64)
	if ns, err := strconv.ParseInt(fields["received_at"], 10, 64); err == nil {
		seg.ReceivedAt = time.Unix(0, ns).UTC()
	}
	return seg
}
