package domain

import "context"

// Port is the hot tier contract. The hot tier is the only structure touched
// by more than one concurrent task, so every operation is a single
// round-trip per key; no read-then-write pairs
type Port interface {
	// Upsert inserts or fully replaces the segment state and refreshes its
	// TTL. Last write wins; callers tolerate replacing a slightly-stale read
	Upsert(ctx context.Context, seg Segment) error

	// SetSpeaker mutates only the speaker label without resetting the
	// revision clock; allowed until the segment is promoted
	SetSpeaker(ctx context.Context, sessionID string, start, end float64, speaker string) error

	// QueryRange returns current segment states ordered by start time
	QueryRange(ctx context.Context, sessionID string, start, end float64) ([]Segment, error)

	// Evict removes a segment after successful promotion
	Evict(ctx context.Context, sessionID string, start, end float64) error

	// Sessions lists sessions that currently hold hot segments
	Sessions(ctx context.Context) ([]string, error)

	// AddSpeakerEvent records an activity marker for a session
	AddSpeakerEvent(ctx context.Context, ev SpeakerEvent) error

	// SpeakerEvents returns the session's markers ordered by timestamp
	SpeakerEvents(ctx context.Context, sessionID string) ([]SpeakerEvent, error)
}
