package service

import (
	"context"
	"math"
	"time"

	"murmur/internal/platform/logger"
	hotdom "murmur/internal/services/hottier/domain"
	"murmur/internal/services/transcripts/domain"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// SweeperConfig controls the immutability sweep cadence
type SweeperConfig struct {
	// Interval between sweeps (default 10s)
	Interval time.Duration
	// Threshold is the minimum age since last revision before a segment is
	// promoted to durable storage (default 30s)
	Threshold time.Duration
}

// Sweeper periodically promotes aged-out hot segments into the durable
// store. Per-segment states: PENDING (hot, mutable) -> FINALIZING (selected
// here) -> FINALIZED (durable); a failed sweep leaves the segment PENDING
// for the next cycle, never backward from FINALIZED
type Sweeper struct {
	cfg    SweeperConfig
	hot    hotdom.Port
	writer domain.WriterPort
	notify domain.NotifierPort

	now func() time.Time // test seam
}

// NewSweeper constructs the sweeper; notify may be nil
func NewSweeper(hot hotdom.Port, writer domain.WriterPort, notify domain.NotifierPort, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 30 * time.Second
	}
	return &Sweeper{cfg: cfg, hot: hot, writer: writer, notify: notify, now: time.Now}
}

// Run implements domain.SweeperPort; loops until ctx is cancelled
func (w *Sweeper) Run(ctx context.Context) error {
	log := logger.Named("sweeper")
	t := time.NewTicker(w.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			promoted, drained := w.SweepOnce(ctx)
			if promoted > 0 {
				log.Debug().Int("promoted", promoted).Int("drained_sessions", drained).Msg("sweep done")
			}
		}
	}
}

// SweepOnce promotes every eligible segment across sessions and returns the
// promoted count and the number of sessions fully drained by this pass.
// One session's storage failure is logged and skipped, never fatal
func (w *Sweeper) SweepOnce(ctx context.Context) (promoted, drained int) {
	log := logger.Named("sweeper")

	sessions, err := w.hot.Sessions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("hot tier unavailable; sweep skipped")
		return 0, 0
	}

	now := w.now()
	for _, sid := range sessions {
		segs, err := w.hot.QueryRange(ctx, sid, negInf, posInf)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sid).Msg("hot tier range failed; session skipped")
			continue
		}

		eligible := segs[:0:0]
		for _, seg := range segs {
			if now.Sub(seg.ReceivedAt) > w.cfg.Threshold {
				eligible = append(eligible, seg)
			}
		}
		if len(eligible) == 0 {
			continue
		}

		rows := make([]domain.UpsertRow, 0, len(eligible))
		for _, seg := range eligible {
			rows = append(rows, domain.UpsertRow{
				SessionID:           seg.SessionID,
				MeetingID:           seg.MeetingID,
				StartTime:           seg.StartTime,
				EndTime:             seg.EndTime,
				Text:                seg.Text,
				Language:            seg.Language,
				LanguageProbability: seg.LanguageProbability,
				Speaker:             seg.Speaker,
			})
		}

		if err := w.writer.FinalizeBatch(ctx, rows); err != nil {
			// segments stay in the hot tier; next sweep retries
			log.Warn().Err(err).Str("session_id", sid).Int("segments", len(rows)).
				Msg("finalize failed; will retry next sweep")
			continue
		}

		for _, seg := range eligible {
			if err := w.hot.Evict(ctx, seg.SessionID, seg.StartTime, seg.EndTime); err != nil {
				// already durable; the upsert is idempotent if this redelivers
				log.Warn().Err(err).Str("session_id", sid).Msg("evict failed after finalize")
			}
		}
		promoted += len(eligible)

		if len(eligible) == len(segs) {
			drained++
			if w.notify != nil && len(eligible) > 0 {
				if err := w.notify.Schedule(ctx, eligible[0].MeetingID, sid); err != nil {
					log.Warn().Err(err).Str("session_id", sid).Msg("notify schedule failed")
				}
			}
		}
	}
	return promoted, drained
}
