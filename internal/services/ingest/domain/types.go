// Package domain defines the wire payloads and contracts of the ingestion
// consumers. Payloads are typed records validated at the boundary; a message
// that fails validation is corrupt, not retryable
package domain

import (
	"encoding/json"
	"time"

	perr "murmur/internal/platform/errors"
	hotdom "murmur/internal/services/hottier/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SegmentPayload is one transcription delivery off the segment stream
type SegmentPayload struct {
	SessionID           string  `json:"session_id" validate:"required"`
	MeetingID           int64   `json:"meeting_id" validate:"required,gt=0"`
	StartTime           float64 `json:"start_time" validate:"gte=0"`
	EndTime             float64 `json:"end_time" validate:"gtfield=StartTime"`
	Text                string  `json:"text"`
	Language            string  `json:"language,omitempty"`
	LanguageProbability float64 `json:"language_probability,omitempty" validate:"gte=0,lte=1"`
}

// SpeakerPayload is one activity marker off the speaker-event stream
type SpeakerPayload struct {
	SessionID         string  `json:"session_id" validate:"required"`
	SpeakerName       string  `json:"speaker_name" validate:"required"`
	EventType         string  `json:"event_type" validate:"required,oneof=start end"`
	RelativeTimestamp float64 `json:"relative_timestamp" validate:"gte=0"`
}

// payloadField is the stream entry field carrying the JSON document
const payloadField = "payload"

func rawPayload(values map[string]any) (string, error) {
	raw, ok := values[payloadField].(string)
	if !ok || raw == "" {
		return "", perr.Malformedf("stream entry missing %s field", payloadField)
	}
	return raw, nil
}

// ParseSegment decodes and validates a segment stream entry
func ParseSegment(values map[string]any) (SegmentPayload, error) {
	var p SegmentPayload
	raw, err := rawPayload(values)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, perr.Wrap(err, perr.ErrorCodeMalformed, "decode segment payload")
	}
	if err := validate.Struct(p); err != nil {
		return p, perr.Wrap(err, perr.ErrorCodeMalformed, "invalid segment payload")
	}
	return p, nil
}

// ParseSpeaker decodes and validates a speaker stream entry
func ParseSpeaker(values map[string]any) (SpeakerPayload, error) {
	var p SpeakerPayload
	raw, err := rawPayload(values)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, perr.Wrap(err, perr.ErrorCodeMalformed, "decode speaker payload")
	}
	if err := validate.Struct(p); err != nil {
		return p, perr.Wrap(err, perr.ErrorCodeMalformed, "invalid speaker payload")
	}
	return p, nil
}

// Segment converts the payload to hot tier state, stamping the ingestion
// wall clock; each accepted revision restarts the immutability window
func (p SegmentPayload) Segment(receivedAt time.Time) hotdom.Segment {
	return hotdom.Segment{
		SessionID:           p.SessionID,
		MeetingID:           p.MeetingID,
		StartTime:           p.StartTime,
		EndTime:             p.EndTime,
		Text:                p.Text,
		Language:            p.Language,
		LanguageProbability: p.LanguageProbability,
		ReceivedAt:          receivedAt,
	}
}

// Event converts the payload to a stored speaker event
func (p SpeakerPayload) Event() hotdom.SpeakerEvent {
	return hotdom.SpeakerEvent{
		SessionID: p.SessionID,
		Speaker:   p.SpeakerName,
		Type:      p.EventType,
		At:        p.RelativeTimestamp,
	}
}
