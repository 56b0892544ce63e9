package http_test

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "murmur/internal/platform/errors"
	phttp "murmur/internal/platform/net/http"
	"murmur/internal/services/transcripts/domain"
	thttp "murmur/internal/services/transcripts/http"

	"github.com/go-chi/chi/v5"
)

type fakeReader struct {
	transcripts map[int64]domain.Transcript
}

func (f *fakeReader) Transcript(_ context.Context, platform string, meetingID int64) (domain.Transcript, error) {
	t, ok := f.transcripts[meetingID]
	if !ok || t.Platform != platform {
		return domain.Transcript{}, perr.NotFoundf("meeting %d not found on %s", meetingID, platform)
	}
	return t, nil
}

func newTestRouter(r *fakeReader) *chi.Mux {
	mux := chi.NewRouter()
	thttp.Register(phttp.AdaptChi(mux), r)
	return mux
}

func TestTranscriptEndpoint_OK(t *testing.T) {
	mux := newTestRouter(&fakeReader{transcripts: map[int64]domain.Transcript{
		7: {
			Platform:  "zoom",
			MeetingID: 7,
			Segments: []domain.Row{
				{SessionID: "s1", MeetingID: 7, StartTime: 0, EndTime: 2, Text: "hello", Pending: false},
				{SessionID: "s1", MeetingID: 7, StartTime: 2, EndTime: 4, Text: "still talking", Pending: true},
			},
		},
	}})

	req := httptest.NewRequest(stdhttp.MethodGet, "/transcripts/zoom/7", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rr.Code, rr.Body.String())
	}

	var env struct {
		Data domain.Transcript `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.MeetingID != 7 || len(env.Data.Segments) != 2 {
		t.Fatalf("unexpected payload %+v", env.Data)
	}
	if !env.Data.Segments[1].Pending {
		t.Fatal("expected pending flag to survive serialization")
	}
}

func TestTranscriptEndpoint_UnknownMeetingIs404(t *testing.T) {
	mux := newTestRouter(&fakeReader{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/transcripts/zoom/99", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestTranscriptEndpoint_BadMeetingID(t *testing.T) {
	mux := newTestRouter(&fakeReader{})

	for _, path := range []string{"/transcripts/zoom/abc", "/transcripts/zoom/-4", "/transcripts/zoom/0"} {
		req := httptest.NewRequest(stdhttp.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("GET %s = %d, want 422", path, rr.Code)
		}
	}
}
