// Package domain defines core types and interfaces for finalized transcripts
package domain

import "time"

// Row is one finalized transcript segment, the system of record shape.
// At most one row exists per (SessionID, StartTime, EndTime)
type Row struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	MeetingID           int64     `json:"meeting_id"`
	StartTime           float64   `json:"start_time"`
	EndTime             float64   `json:"end_time"`
	Text                string    `json:"text"`
	Language            string    `json:"language,omitempty"`
	LanguageProbability float64   `json:"language_probability,omitempty"`
	Speaker             string    `json:"speaker,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	// Pending marks rows still in the hot tier on live reads
	Pending bool `json:"pending,omitempty"`
}

// UpsertRow is the write shape promoted by the immutability sweep
type UpsertRow struct {
	SessionID           string
	MeetingID           int64
	StartTime           float64
	EndTime             float64
	Text                string
	Language            string
	LanguageProbability float64
	Speaker             string
}

// Transcript is the retrieval view combining finalized and pending segments
type Transcript struct {
	Platform  string `json:"platform"`
	MeetingID int64  `json:"meeting_id"`
	Segments  []Row  `json:"segments"`
}

// Notification announces that a session's transcript became fully finalized
type Notification struct {
	DeliveryID  string    `json:"delivery_id"`
	MeetingID   int64     `json:"meeting_id"`
	SessionID   string    `json:"session_id"`
	FinalizedAt time.Time `json:"finalized_at"`
}
