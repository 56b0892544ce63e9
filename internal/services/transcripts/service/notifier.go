package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	perr "murmur/internal/platform/errors"
	"murmur/internal/platform/logger"
	"murmur/internal/platform/store/rds"
	"murmur/internal/services/transcripts/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NotifierConfig controls finalization webhook delivery
type NotifierConfig struct {
	// URL receives the POST; empty disables delivery (schedules still drain)
	URL string
	// Delay between a session draining and the webhook firing (default 5s),
	// absorbing stragglers that re-open the session
	Delay time.Duration
	// Poll is the due-check cadence (default 1s)
	Poll time.Duration
	// Prefix namespaces the delay-queue key (default "murmur")
	Prefix string
}

// Notifier delivers fire-and-forget finalization webhooks through a redis
// delay queue, so scheduled deliveries survive process restarts rather than
// living in an in-memory timer
type Notifier struct {
	cfg   NotifierConfig
	rds   *rds.RDS
	httpc *http.Client

	now func() time.Time // test seam
}

// NewNotifier constructs the notifier
func NewNotifier(r *rds.RDS, cfg NotifierConfig) *Notifier {
	if cfg.Delay <= 0 {
		cfg.Delay = 5 * time.Second
	}
	if cfg.Poll <= 0 {
		cfg.Poll = time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "murmur"
	}
	return &Notifier{
		cfg:   cfg,
		rds:   r,
		httpc: &http.Client{Timeout: 10 * time.Second},
		now:   time.Now,
	}
}

func (n *Notifier) queueKey() string { return n.cfg.Prefix + ":notify" }

type pendingNotice struct {
	MeetingID int64  `json:"meeting_id"`
	SessionID string `json:"session_id"`
}

// Schedule implements domain.NotifierPort. The member is the identity, so
// rescheduling the same session just moves its due time
func (n *Notifier) Schedule(ctx context.Context, meetingID int64, sessionID string) error {
	raw, err := json.Marshal(pendingNotice{MeetingID: meetingID, SessionID: sessionID})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeMalformed, "encode notification")
	}
	due := float64(n.now().Add(n.cfg.Delay).UnixMilli())
	err = n.rds.Client.ZAdd(ctx, n.queueKey(), redis.Z{Score: due, Member: string(raw)}).Err()
	return perr.FromRedis(err, "schedule notification")
}

// Run implements domain.NotifierPort; polls for due entries until cancelled
func (n *Notifier) Run(ctx context.Context) error {
	log := logger.Named("notifier")
	t := time.NewTicker(n.cfg.Poll)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			n.deliverDue(ctx, log)
		}
	}
}

func (n *Notifier) deliverDue(ctx context.Context, log *logger.Logger) {
	now := float64(n.now().UnixMilli())
	due, err := n.rds.Client.ZRangeByScore(ctx, n.queueKey(), &redis.ZRangeBy{
		Min: "-inf", Max: strconv.FormatFloat(now, 'f', -1, 64), Count: 64,
	}).Result()
	if err != nil {
		log.Warn().Err(err).Msg("delay queue read failed")
		return
	}

	for _, raw := range due {
		// ZRem is the claim: only one process removes a given member
		removed, err := n.rds.Client.ZRem(ctx, n.queueKey(), raw).Result()
		if err != nil || removed == 0 {
			continue
		}

		var p pendingNotice
		if json.Unmarshal([]byte(raw), &p) != nil {
			log.Warn().Str("member", raw).Msg("malformed delay queue entry dropped")
			continue
		}
		n.deliver(ctx, log, p)
	}
}

// deliver POSTs the webhook; failures are logged and dropped, never retried
// into the pipeline (fire and forget)
func (n *Notifier) deliver(ctx context.Context, log *logger.Logger, p pendingNotice) {
	if n.cfg.URL == "" {
		return
	}
	body, err := json.Marshal(domain.Notification{
		DeliveryID:  uuid.NewString(),
		MeetingID:   p.MeetingID,
		SessionID:   p.SessionID,
		FinalizedAt: n.now().UTC(),
	})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpc.Do(req)
	if err != nil {
		log.Warn().Err(err).Int64("meeting_id", p.MeetingID).Msg("webhook delivery failed")
		return
	}
	_ = resp.Body.Close()
	log.Debug().Int64("meeting_id", p.MeetingID).Str("session_id", p.SessionID).
		Int("status", resp.StatusCode).Msg("finalization webhook sent")
}
