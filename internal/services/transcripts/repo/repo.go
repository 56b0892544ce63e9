// Package repo provides the Postgres repository for finalized transcripts
package repo

import (
	"context"
	stderrs "errors"

	"murmur/internal/modkit/repokit"
	perr "murmur/internal/platform/errors"
	"murmur/internal/services/transcripts/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type binder struct{}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the transcripts repository
type Storage interface {
	UpsertSegments(ctx context.Context, rows []domain.UpsertRow) error
	ByMeeting(ctx context.Context, meetingID int64) ([]domain.Row, error)
	MeetingExists(ctx context.Context, platform string, meetingID int64) (bool, error)
	MeetingActive(ctx context.Context, meetingID int64) (bool, error)
}

type pg struct{ q repokit.Queryer }

// upsertSQL merges a promoted segment into the system of record.
// The CASE guards regression: an empty revision never clobbers prior
// non-empty finalized text; same for a late-arriving empty speaker label
const upsertSQL = `
	INSERT INTO transcript_segments
		(id, session_id, meeting_id, start_time, end_time, text, language, language_probability, speaker, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (session_id, start_time, end_time) DO UPDATE SET
		text = CASE
			WHEN EXCLUDED.text = '' AND transcript_segments.text <> '' THEN transcript_segments.text
			ELSE EXCLUDED.text
		END,
		language             = EXCLUDED.language,
		language_probability = EXCLUDED.language_probability,
		speaker = CASE
			WHEN EXCLUDED.speaker = '' THEN transcript_segments.speaker
			ELSE EXCLUDED.speaker
		END
`

// UpsertSegments implements Storage; idempotent per dedup key
func (s *pg) UpsertSegments(ctx context.Context, rows []domain.UpsertRow) error {
	for _, r := range rows {
		_, err := s.q.Exec(ctx, upsertSQL,
			uuid.NewString(), r.SessionID, r.MeetingID, r.StartTime, r.EndTime,
			r.Text, r.Language, r.LanguageProbability, r.Speaker,
		)
		if err != nil {
			return perr.FromPostgres(err, "upsert transcript segment")
		}
	}
	return nil
}

// ByMeeting implements Storage; rows ordered by session then start time
func (s *pg) ByMeeting(ctx context.Context, meetingID int64) ([]domain.Row, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id::text, session_id, meeting_id, start_time, end_time,
			text, COALESCE(language, ''), COALESCE(language_probability, 0),
			COALESCE(speaker, ''), created_at
		FROM transcript_segments
		WHERE meeting_id = $1
		ORDER BY session_id, start_time
	`, meetingID)
	if err != nil {
		return nil, perr.FromPostgres(err, "query transcript segments")
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var r domain.Row
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.MeetingID, &r.StartTime, &r.EndTime,
			&r.Text, &r.Language, &r.LanguageProbability, &r.Speaker, &r.CreatedAt,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan transcript segment")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MeetingExists implements Storage
func (s *pg) MeetingExists(ctx context.Context, platform string, meetingID int64) (bool, error) {
	var one int
	err := s.q.QueryRow(ctx,
		`SELECT 1 FROM meetings WHERE id = $1 AND platform = $2`, meetingID, platform,
	).Scan(&one)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, perr.FromPostgres(err, "meeting lookup")
	}
	return true, nil
}

// MeetingActive implements Storage; a meeting accepts segments while active
// or recently ended
func (s *pg) MeetingActive(ctx context.Context, meetingID int64) (bool, error) {
	var one int
	err := s.q.QueryRow(ctx, `
		SELECT 1 FROM meetings
		WHERE id = $1
			AND (status IN ('active', 'joining')
				OR (status = 'ended' AND ended_at > now() - interval '15 minutes'))
	`, meetingID).Scan(&one)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, perr.FromPostgres(err, "meeting active lookup")
	}
	return true, nil
}
