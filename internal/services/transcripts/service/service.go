// Package service contains transcript workflows: live reads, the
// immutability sweep, and finalization notification
package service

import (
	"context"
	"sort"

	"murmur/internal/modkit/repokit"
	perr "murmur/internal/platform/errors"
	hotdom "murmur/internal/services/hottier/domain"
	"murmur/internal/services/transcripts/domain"
	"murmur/internal/services/transcripts/repo"
)

// Service implements domain.ReaderPort, domain.WriterPort, and
// domain.RegistryPort over the durable store, consulting the hot tier for
// pending segments on live reads
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Hot    hotdom.Port
}

// New constructs the transcripts service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], hot hotdom.Port) *Service {
	return &Service{DB: db, Binder: b, Hot: hot}
}

// Transcript implements domain.ReaderPort. Pending hot-tier segments win on
// key collision since they are newer than their finalized counterpart
func (s *Service) Transcript(ctx context.Context, platform string, meetingID int64) (domain.Transcript, error) {
	st := s.Binder.Bind(s.DB)

	ok, err := st.MeetingExists(ctx, platform, meetingID)
	if err != nil {
		return domain.Transcript{}, err
	}
	if !ok {
		return domain.Transcript{}, perr.NotFoundf("meeting %d not found on %s", meetingID, platform)
	}

	finalized, err := st.ByMeeting(ctx, meetingID)
	if err != nil {
		return domain.Transcript{}, err
	}

	type key struct {
		session    string
		start, end float64
	}
	merged := make(map[key]domain.Row, len(finalized))
	for _, r := range finalized {
		merged[key{r.SessionID, r.StartTime, r.EndTime}] = r
	}

	// hot tier is keyed by session; scan its sessions and keep this meeting's
	if s.Hot != nil {
		sessions, err := s.Hot.Sessions(ctx)
		if err != nil {
			// live reads degrade to finalized-only when the hot tier is down
			sessions = nil
		}
		for _, sid := range sessions {
			segs, err := s.Hot.QueryRange(ctx, sid, negInf, posInf)
			if err != nil {
				continue
			}
			for _, seg := range segs {
				if seg.MeetingID != meetingID {
					continue
				}
				merged[key{seg.SessionID, seg.StartTime, seg.EndTime}] = domain.Row{
					SessionID:           seg.SessionID,
					MeetingID:           seg.MeetingID,
					StartTime:           seg.StartTime,
					EndTime:             seg.EndTime,
					Text:                seg.Text,
					Language:            seg.Language,
					LanguageProbability: seg.LanguageProbability,
					Speaker:             seg.Speaker,
					CreatedAt:           seg.ReceivedAt,
					Pending:             true,
				}
			}
		}
	}

	out := make([]domain.Row, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].SessionID < out[j].SessionID
	})

	return domain.Transcript{Platform: platform, MeetingID: meetingID, Segments: out}, nil
}

// FinalizeBatch implements domain.WriterPort
func (s *Service) FinalizeBatch(ctx context.Context, rows []domain.UpsertRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).UpsertSegments(ctx, rows)
	})
}

// ActiveMeeting implements domain.RegistryPort
func (s *Service) ActiveMeeting(ctx context.Context, meetingID int64) (bool, error) {
	return s.Binder.Bind(s.DB).MeetingActive(ctx, meetingID)
}
