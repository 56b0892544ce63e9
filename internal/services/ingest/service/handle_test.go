package service

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"sort"
	"sync"
	"testing"
	"time"

	"murmur/internal/adapters/queue/redstream"
	"murmur/internal/core/textfilter"
	"murmur/internal/modkit"
	hotdom "murmur/internal/services/hottier/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// fakeHot is an in-memory hot tier
type fakeHot struct {
	mu   sync.Mutex
	segs map[string]map[string]hotdom.Segment
	evs  map[string][]hotdom.SpeakerEvent

	failUpsert bool
}

func newFakeHot() *fakeHot {
	return &fakeHot{
		segs: map[string]map[string]hotdom.Segment{},
		evs:  map[string][]hotdom.SpeakerEvent{},
	}
}

func (f *fakeHot) Upsert(_ context.Context, seg hotdom.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return stderrs.New("connection refused")
	}
	m, ok := f.segs[seg.SessionID]
	if !ok {
		m = map[string]hotdom.Segment{}
		f.segs[seg.SessionID] = m
	}
	m[seg.Key()] = seg
	return nil
}

func (f *fakeHot) SetSpeaker(_ context.Context, sessionID string, start, end float64, speaker string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := hotdom.SegmentKey(start, end)
	seg, ok := f.segs[sessionID][key]
	if !ok {
		return nil
	}
	seg.Speaker = speaker
	f.segs[sessionID][key] = seg
	return nil
}

func (f *fakeHot) QueryRange(_ context.Context, sessionID string, start, end float64) ([]hotdom.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []hotdom.Segment
	for _, seg := range f.segs[sessionID] {
		if seg.StartTime >= start && seg.StartTime <= end {
			out = append(out, seg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeHot) Evict(_ context.Context, sessionID string, start, end float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.segs[sessionID], hotdom.SegmentKey(start, end))
	return nil
}

func (f *fakeHot) Sessions(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for sid := range f.segs {
		out = append(out, sid)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeHot) AddSpeakerEvent(_ context.Context, ev hotdom.SpeakerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evs[ev.SessionID] = append(f.evs[ev.SessionID], ev)
	return nil
}

func (f *fakeHot) SpeakerEvents(_ context.Context, sessionID string) ([]hotdom.SpeakerEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]hotdom.SpeakerEvent(nil), f.evs[sessionID]...), nil
}

func (f *fakeHot) segment(sessionID string, start, end float64) (hotdom.Segment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seg, ok := f.segs[sessionID][hotdom.SegmentKey(start, end)]
	return seg, ok
}

// fakeRegistry answers meeting liveness lookups
type fakeRegistry struct {
	active map[int64]bool
	err    error
}

func (f *fakeRegistry) ActiveMeeting(_ context.Context, meetingID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.active[meetingID], nil
}

func newSvc(hot *fakeHot, reg *fakeRegistry) *Svc {
	s := New(modkit.Deps{}, Config{
		SegmentStream: "t:segments",
		SpeakerStream: "t:speakers",
		Group:         "t-group",
		Consumer:      "t-consumer",
	}, nil, textfilter.New(), hot, reg)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func segMsg(t *testing.T, fields map[string]any) redstream.Message {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return redstream.Message{ID: "1-0", Values: map[string]any{"payload": string(raw)}}
}

func TestHandleSegment_StoresInformativeSegment(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{7: true}})

	ack, err := svc.handleSegment(context.Background(), segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 1.0, "end_time": 3.5,
		"text": "the budget looks fine", "language": "en",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ack {
		t.Fatal("expected ack after successful absorb")
	}

	seg, ok := hot.segment("s1", 1.0, 3.5)
	if !ok {
		t.Fatal("expected segment in hot tier")
	}
	if seg.Text != "the budget looks fine" || seg.MeetingID != 7 {
		t.Fatalf("unexpected stored segment %+v", seg)
	}
	if seg.ReceivedAt.IsZero() {
		t.Fatal("expected ingestion timestamp to be stamped")
	}
}

func TestHandleSegment_MalformedIsAckedAndDropped(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{7: true}})

	cases := []redstream.Message{
		{ID: "1-0", Values: map[string]any{}},
		{ID: "1-1", Values: map[string]any{"payload": "{not json"}},
		segMsg(t, map[string]any{"meeting_id": 7, "start_time": 1.0, "end_time": 2.0, "text": "missing session"}),
		segMsg(t, map[string]any{"session_id": "s1", "meeting_id": 7, "start_time": 3.0, "end_time": 1.0, "text": "inverted times"}),
	}
	for _, m := range cases {
		ack, err := svc.handleSegment(context.Background(), m)
		if err == nil {
			t.Fatalf("expected error for message %s", m.ID)
		}
		if !ack {
			t.Fatalf("expected malformed message %s to be acked, not retried", m.ID)
		}
	}

	if sessions, _ := hot.Sessions(context.Background()); len(sessions) != 0 {
		t.Fatalf("expected nothing stored, got sessions %v", sessions)
	}
}

func TestHandleSegment_NonInformativeIsAckedAndDropped(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{7: true}})

	for _, text := range []string{"hi", "testing", "hahahahaha"} {
		ack, err := svc.handleSegment(context.Background(), segMsg(t, map[string]any{
			"session_id": "s1", "meeting_id": 7,
			"start_time": 0.0, "end_time": 1.0, "text": text,
		}))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if !ack {
			t.Fatalf("expected filtered segment %q to be acked", text)
		}
	}

	if sessions, _ := hot.Sessions(context.Background()); len(sessions) != 0 {
		t.Fatalf("expected nothing stored, got sessions %v", sessions)
	}
}

func TestHandleSegment_UnknownMeetingDropped(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{}})

	ack, err := svc.handleSegment(context.Background(), segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 99,
		"start_time": 0.0, "end_time": 1.0, "text": "valid words here",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ack {
		t.Fatal("expected unknown-meeting segment to be acked and dropped")
	}
}

func TestHandleSegment_TransientFailureLeavesPending(t *testing.T) {
	hot := newFakeHot()
	reg := &fakeRegistry{err: stderrs.New("connection refused")}
	svc := newSvc(hot, reg)

	msg := segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 0.0, "end_time": 1.0, "text": "valid words here",
	})

	ack, err := svc.handleSegment(context.Background(), msg)
	if err == nil {
		t.Fatal("expected registry error to surface")
	}
	if ack {
		t.Fatal("expected transient failure to leave the message pending")
	}

	// same for a failing hot tier write
	reg.err = nil
	reg.active = map[int64]bool{7: true}
	hot.failUpsert = true
	ack, err = svc.handleSegment(context.Background(), msg)
	if err == nil || ack {
		t.Fatalf("expected upsert failure unacked, got ack=%v err=%v", ack, err)
	}
}

func TestHandleSegment_UnexpectedRegistryFailureLeavesPending(t *testing.T) {
	hot := newFakeHot()
	// a schema-level failure is not retryable, but the segment itself is fine
	// and must not be lost
	reg := &fakeRegistry{err: &pgconn.PgError{Code: "42P01", Message: `relation "meetings" does not exist`}}
	svc := newSvc(hot, reg)

	ack, err := svc.handleSegment(context.Background(), segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 0.0, "end_time": 1.0, "text": "valid words here",
	}))
	if err == nil {
		t.Fatal("expected lookup error to surface")
	}
	if ack {
		t.Fatal("expected unexpected lookup failure to leave the message pending")
	}
	if sessions, _ := hot.Sessions(context.Background()); len(sessions) != 0 {
		t.Fatalf("expected nothing stored, got sessions %v", sessions)
	}
}

func TestHandleSegment_RevisionReplacesText(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{7: true}})

	first := segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 1.0, "end_time": 3.0, "text": "first draft transcript",
	})
	revision := segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 1.0, "end_time": 3.0, "text": "corrected transcript text",
	})

	if ack, err := svc.handleSegment(context.Background(), first); !ack || err != nil {
		t.Fatalf("first delivery failed: ack=%v err=%v", ack, err)
	}
	if ack, err := svc.handleSegment(context.Background(), revision); !ack || err != nil {
		t.Fatalf("revision failed: ack=%v err=%v", ack, err)
	}

	segs, _ := hot.QueryRange(context.Background(), "s1", negInf, posInf)
	if len(segs) != 1 {
		t.Fatalf("expected one row per dedup key, got %d", len(segs))
	}
	if segs[0].Text != "corrected transcript text" {
		t.Fatalf("expected latest revision to win, got %q", segs[0].Text)
	}
}

func TestHandleSegment_AttributesFromKnownEvents(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{7: true}})

	_ = hot.AddSpeakerEvent(context.Background(), hotdom.SpeakerEvent{
		SessionID: "s1", Speaker: "Alice", Type: "start", At: 0,
	})
	_ = hot.AddSpeakerEvent(context.Background(), hotdom.SpeakerEvent{
		SessionID: "s1", Speaker: "Alice", Type: "end", At: 10,
	})

	ack, err := svc.handleSegment(context.Background(), segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 2.0, "end_time": 4.0, "text": "status update from alice",
	}))
	if !ack || err != nil {
		t.Fatalf("delivery failed: ack=%v err=%v", ack, err)
	}

	seg, _ := hot.segment("s1", 2.0, 4.0)
	if seg.Speaker != "Alice" {
		t.Fatalf("expected Alice attributed, got %q", seg.Speaker)
	}
}

func TestHandleSpeaker_ReattributesHotSegments(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{active: map[int64]bool{7: true}})

	// segment arrives before any speaker data; stays unattributed
	if ack, err := svc.handleSegment(context.Background(), segMsg(t, map[string]any{
		"session_id": "s1", "meeting_id": 7,
		"start_time": 2.0, "end_time": 4.0, "text": "who said this exactly",
	})); !ack || err != nil {
		t.Fatalf("segment delivery failed: ack=%v err=%v", ack, err)
	}
	if seg, _ := hot.segment("s1", 2.0, 4.0); seg.Speaker != "" {
		t.Fatalf("expected no speaker before events, got %q", seg.Speaker)
	}

	// speaker events arrive late and re-attribute the stored segment
	for _, m := range []redstream.Message{
		segMsg(t, map[string]any{"session_id": "s1", "speaker_name": "Bob", "event_type": "start", "relative_timestamp": 1.0}),
		segMsg(t, map[string]any{"session_id": "s1", "speaker_name": "Bob", "event_type": "end", "relative_timestamp": 5.0}),
	} {
		if ack, err := svc.handleSpeaker(context.Background(), m); !ack || err != nil {
			t.Fatalf("speaker delivery failed: ack=%v err=%v", ack, err)
		}
	}

	if seg, _ := hot.segment("s1", 2.0, 4.0); seg.Speaker != "Bob" {
		t.Fatalf("expected Bob after re-attribution, got %q", seg.Speaker)
	}
}

func TestHandleSpeaker_MalformedIsAckedAndDropped(t *testing.T) {
	hot := newFakeHot()
	svc := newSvc(hot, &fakeRegistry{})

	ack, err := svc.handleSpeaker(context.Background(), segMsg(t, map[string]any{
		"session_id": "s1", "speaker_name": "Bob", "event_type": "pause", "relative_timestamp": 1.0,
	}))
	if err == nil {
		t.Fatal("expected validation error for unknown event type")
	}
	if !ack {
		t.Fatal("expected malformed speaker event to be acked")
	}
}
