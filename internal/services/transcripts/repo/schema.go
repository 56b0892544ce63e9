package repo

import (
	"context"

	"murmur/internal/modkit/repokit"
	perr "murmur/internal/platform/errors"
)

// schemaSQL holds the system-of-record tables. The unique constraint on
// (session_id, start_time, end_time) enforces the at-most-one-row-per-key
// invariant the upsert relies on
const schemaSQL = `
CREATE TABLE IF NOT EXISTS meetings (
	id         BIGINT PRIMARY KEY,
	platform   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS transcript_segments (
	id                   UUID PRIMARY KEY,
	session_id           TEXT NOT NULL,
	meeting_id           BIGINT NOT NULL,
	start_time           DOUBLE PRECISION NOT NULL,
	end_time             DOUBLE PRECISION NOT NULL,
	text                 TEXT NOT NULL,
	language             TEXT,
	language_probability DOUBLE PRECISION,
	speaker              TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (session_id, start_time, end_time)
);

CREATE INDEX IF NOT EXISTS transcript_segments_meeting_idx
	ON transcript_segments (meeting_id, start_time);
`

// EnsureSchema creates the tables when missing; called once at boot
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, schemaSQL)
	return perr.WrapIf(err, perr.ErrorCodeDB, "ensure transcript schema")
}
