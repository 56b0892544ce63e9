package domain

import "context"

// ReaderPort serves live transcript reads
type ReaderPort interface {
	// Transcript merges finalized rows with hot-tier pending segments for a
	// meeting; a lagging pipeline yields an incomplete transcript, not an error
	Transcript(ctx context.Context, platform string, meetingID int64) (Transcript, error)
}

// WriterPort persists promoted segments
type WriterPort interface {
	// FinalizeBatch idempotently upserts rows; an empty revision never
	// overwrites prior non-empty finalized text
	FinalizeBatch(ctx context.Context, rows []UpsertRow) error
}

// RegistryPort validates that segments belong to a known meeting
type RegistryPort interface {
	ActiveMeeting(ctx context.Context, meetingID int64) (bool, error)
}

// SweeperPort runs the periodic immutability sweep
type SweeperPort interface {
	Run(ctx context.Context) error
}

// NotifierPort schedules and delivers finalization webhooks. Schedules live
// in the delay queue so they survive process restarts
type NotifierPort interface {
	Schedule(ctx context.Context, meetingID int64, sessionID string) error
	Run(ctx context.Context) error
}
