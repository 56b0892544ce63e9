package service

import (
	"context"
	"math"

	"murmur/internal/adapters/queue/redstream"
	"murmur/internal/core/attribution"
	"murmur/internal/platform/logger"
	hotdom "murmur/internal/services/hottier/domain"
	"murmur/internal/services/ingest/domain"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

func toAttribution(events []hotdom.SpeakerEvent) []attribution.Event {
	out := make([]attribution.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, attribution.Event{
			Speaker: ev.Speaker,
			Type:    attribution.EventType(ev.Type),
			At:      ev.At,
		})
	}
	return out
}

// handleSegment absorbs one transcription delivery. The returned ack flag
// decides whether the entry leaves the pending list: malformed and filtered
// entries are acked-and-dropped, transient failures stay pending for reclaim
func (s *Svc) handleSegment(ctx context.Context, m redstream.Message) (ack bool, err error) {
	p, err := domain.ParseSegment(m.Values)
	if err != nil {
		// corrupt per-message data; retrying cannot fix it
		return true, err
	}

	ctx = logger.WithSession(ctx, p.SessionID, p.MeetingID)
	log := logger.C(ctx)

	active, err := s.reg.ActiveMeeting(ctx, p.MeetingID)
	if err != nil {
		// only per-message corruption is safe to drop; a lookup failure of any
		// kind leaves the entry pending so reclaim retries it
		return false, err
	}
	if !active {
		log.Debug().Float64("start", p.StartTime).Msg("segment for unknown or ended meeting dropped")
		return true, nil
	}

	if !s.filter.Informative(p.Text, p.Language) {
		log.Debug().Float64("start", p.StartTime).Msg("non-informative segment dropped")
		return true, nil
	}

	seg := p.Segment(s.now().UTC())

	// attribute from the speaker events known so far; a later event can still
	// revise the label through the speaker loop while the segment is hot
	events, err := s.hot.SpeakerEvents(ctx, p.SessionID)
	if err != nil {
		return false, err
	}
	seg.Speaker = attribution.Attribute(toAttribution(events), seg.StartTime, seg.EndTime)

	if err := s.hot.Upsert(ctx, seg); err != nil {
		return false, err
	}
	return true, nil
}

// handleSpeaker stores one activity marker and re-attributes the session's
// still-mutable segments against the updated event timeline
func (s *Svc) handleSpeaker(ctx context.Context, m redstream.Message) (ack bool, err error) {
	p, err := domain.ParseSpeaker(m.Values)
	if err != nil {
		return true, err
	}

	ctx = logger.WithSession(ctx, p.SessionID, 0)
	log := logger.C(ctx)

	if err := s.hot.AddSpeakerEvent(ctx, p.Event()); err != nil {
		return false, err
	}

	events, err := s.hot.SpeakerEvents(ctx, p.SessionID)
	if err != nil {
		return false, err
	}
	attEvents := toAttribution(events)

	segs, err := s.hot.QueryRange(ctx, p.SessionID, negInf, posInf)
	if err != nil {
		return false, err
	}
	for _, seg := range segs {
		speaker := attribution.Attribute(attEvents, seg.StartTime, seg.EndTime)
		if speaker == "" || speaker == seg.Speaker {
			continue
		}
		if err := s.hot.SetSpeaker(ctx, seg.SessionID, seg.StartTime, seg.EndTime, speaker); err != nil {
			return false, err
		}
		log.Debug().Float64("start", seg.StartTime).Str("speaker", speaker).Msg("segment re-attributed")
	}
	return true, nil
}
