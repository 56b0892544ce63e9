// Package domain defines core types and interfaces for the hot tier
package domain

import (
	"strconv"
	"time"
)

// Segment is the mutable pre-finalization state of one transcribed unit.
// Identity is (SessionID, StartTime, EndTime); later deliveries with the
// same identity are revisions, not duplicates
type Segment struct {
	SessionID           string
	MeetingID           int64
	StartTime           float64
	EndTime             float64
	Text                string
	Language            string
	LanguageProbability float64
	Speaker             string
	ReceivedAt          time.Time
}

// Key renders the time-bounded identity within a session
func (s Segment) Key() string { return SegmentKey(s.StartTime, s.EndTime) }

// SegmentKey renders a (start, end) pair as a stable member string
func SegmentKey(start, end float64) string {
	return strconv.FormatFloat(start, 'f', -1, 64) + "|" + strconv.FormatFloat(end, 'f', -1, 64)
}

// SpeakerEvent is a point-in-time activity marker; never mutated, expires by TTL
type SpeakerEvent struct {
	SessionID string
	Speaker   string
	Type      string // "start" | "end"
	At        float64
}
