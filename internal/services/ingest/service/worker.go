package service

import (
	"context"
	"time"

	"murmur/internal/adapters/queue/redstream"
	"murmur/internal/platform/logger"
)

// Run starts the segment and speaker consumer loops plus the periodic stale
// reclaim, and blocks until ctx is cancelled or a loop fails hard
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("ingest")

	for _, stream := range []string{s.cfg.SegmentStream, s.cfg.SpeakerStream} {
		if err := s.queue.EnsureGroup(ctx, stream, s.cfg.Group); err != nil {
			return err
		}
	}

	// recover entries a crashed consumer left pending before reading new ones
	s.reclaimOnce(ctx, log)

	errCh := make(chan error, 3)
	go func() { errCh <- s.segmentLoop(ctx) }()
	go func() { errCh <- s.speakerLoop(ctx) }()
	go func() { errCh <- s.claimLoop(ctx, log) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Svc) segmentLoop(ctx context.Context) error {
	log := logger.Named("ingest-segments")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := s.queue.ReadBatch(
			ctx, s.cfg.SegmentStream, s.cfg.Group, s.cfg.Consumer, s.cfg.Batch, s.cfg.Block,
		)
		if err != nil {
			// a failed read returns fast, unlike the blocking happy path; pace
			// the retry instead of spinning on the outage
			log.Warn().Err(err).Msg("segment read failed")
			if !s.pause(ctx, s.cfg.ReadRetry) {
				return ctx.Err()
			}
			continue
		}
		s.processSegments(ctx, log, msgs)
	}
}

func (s *Svc) speakerLoop(ctx context.Context) error {
	log := logger.Named("ingest-speakers")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := s.queue.ReadBatch(
			ctx, s.cfg.SpeakerStream, s.cfg.Group, s.cfg.Consumer, s.cfg.Batch, s.cfg.Block,
		)
		if err != nil {
			log.Warn().Err(err).Msg("speaker read failed")
			if !s.pause(ctx, s.cfg.ReadRetry) {
				return ctx.Err()
			}
			continue
		}
		s.processSpeakers(ctx, log, msgs)
	}
}

// pause waits d or until ctx is cancelled, reporting whether to keep going
func (s *Svc) pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// claimLoop periodically reassigns entries whose consumer went quiet, so a
// crash between read and ack results in redelivery, never loss
func (s *Svc) claimLoop(ctx context.Context, log *logger.Logger) error {
	t := time.NewTicker(s.cfg.ClaimInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.reclaimOnce(ctx, log)
		}
	}
}

func (s *Svc) reclaimOnce(ctx context.Context, log *logger.Logger) {
	segs, err := s.queue.ClaimStale(
		ctx, s.cfg.SegmentStream, s.cfg.Group, s.cfg.Consumer, s.cfg.PendingTimeout, s.cfg.Batch,
	)
	if err != nil {
		log.Warn().Err(err).Msg("segment reclaim failed")
	} else if len(segs) > 0 {
		log.Info().Int("claimed", len(segs)).Msg("reclaimed stale segment entries")
		s.processSegments(ctx, logger.Named("ingest-segments"), segs)
	}

	spks, err := s.queue.ClaimStale(
		ctx, s.cfg.SpeakerStream, s.cfg.Group, s.cfg.Consumer, s.cfg.PendingTimeout, s.cfg.Batch,
	)
	if err != nil {
		log.Warn().Err(err).Msg("speaker reclaim failed")
	} else if len(spks) > 0 {
		log.Info().Int("claimed", len(spks)).Msg("reclaimed stale speaker entries")
		s.processSpeakers(ctx, logger.Named("ingest-speakers"), spks)
	}
}

func (s *Svc) processSegments(ctx context.Context, log *logger.Logger, msgs []redstream.Message) {
	for _, m := range msgs {
		ack, err := s.handleSegment(ctx, m)
		if err != nil {
			log.Warn().Err(err).Str("message_id", m.ID).Bool("ack", ack).Msg("segment handling failed")
		}
		if !ack {
			// left pending; a future claim retries it
			continue
		}
		if err := s.queue.Ack(ctx, s.cfg.SegmentStream, s.cfg.Group, m.ID); err != nil {
			log.Warn().Err(err).Str("message_id", m.ID).Msg("segment ack failed")
		}
	}
}

func (s *Svc) processSpeakers(ctx context.Context, log *logger.Logger, msgs []redstream.Message) {
	for _, m := range msgs {
		ack, err := s.handleSpeaker(ctx, m)
		if err != nil {
			log.Warn().Err(err).Str("message_id", m.ID).Bool("ack", ack).Msg("speaker handling failed")
		}
		if !ack {
			continue
		}
		if err := s.queue.Ack(ctx, s.cfg.SpeakerStream, s.cfg.Group, m.ID); err != nil {
			log.Warn().Err(err).Str("message_id", m.ID).Msg("speaker ack failed")
		}
	}
}
