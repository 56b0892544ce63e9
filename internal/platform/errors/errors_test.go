package errors_test

import (
	stderrs "errors"
	"net/http"
	"testing"

	perr "murmur/internal/platform/errors"
)

func TestWrapPreservesCodeAndCause(t *testing.T) {
	cause := stderrs.New("boom")
	err := perr.Wrap(cause, perr.ErrorCodeDB, "upsert failed")

	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected DB code got %v", perr.CodeOf(err))
	}
	if !stderrs.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}
	if perr.Root(err) != cause {
		t.Fatalf("expected Root to return the cause, got %v", perr.Root(err))
	}
	if got := err.Error(); got != "upsert failed: boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCodeOfForeignErrorIsUnknown(t *testing.T) {
	if got := perr.CodeOf(stderrs.New("plain")); got != perr.ErrorCodeUnknown {
		t.Fatalf("expected unknown code got %v", got)
	}
	if got := perr.CodeOf(nil); got != perr.ErrorCodeUnknown {
		t.Fatalf("expected unknown code for nil got %v", got)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{perr.NotFoundf("missing"), http.StatusNotFound},
		{perr.InvalidArgf("bad"), http.StatusUnprocessableEntity},
		{perr.Malformedf("corrupt"), http.StatusUnprocessableEntity},
		{perr.Unavailablef("down"), http.StatusServiceUnavailable},
		{perr.DBf("db"), http.StatusInternalServerError},
		{stderrs.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := perr.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrapIf(t *testing.T) {
	if got := perr.WrapIf(nil, perr.ErrorCodeDB, "noop"); got != nil {
		t.Fatalf("expected nil got %v", got)
	}
	err := perr.WrapIf(stderrs.New("x"), perr.ErrorCodeDB, "wrapped")
	if err == nil || !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected wrapped DB error got %v", err)
	}
}

func TestWithOp(t *testing.T) {
	err := perr.DBf("query failed")
	tagged := perr.WithOp(err, "transcripts.ByMeeting")

	e, ok := perr.As(tagged)
	if !ok || e.Op() != "transcripts.ByMeeting" {
		t.Fatalf("expected op tag, got %+v ok=%v", e, ok)
	}
	// original stays untagged
	orig, _ := perr.As(err)
	if orig.Op() != "" {
		t.Fatalf("expected copy-on-write, original op = %q", orig.Op())
	}

	plain := stderrs.New("plain")
	if got := perr.WithOp(plain, "x"); got != plain {
		t.Fatal("expected foreign error unchanged")
	}
}

func TestWireFrom(t *testing.T) {
	w := perr.WireFrom(perr.NotFoundf("meeting 7 not found"))
	if w.Code != perr.ErrorCodeNotFound || w.Message != "meeting 7 not found" {
		t.Fatalf("unexpected wire %+v", w)
	}
	w = perr.WireFrom(stderrs.New("plain"))
	if w.Code != perr.ErrorCodeUnknown || w.Message != "plain" {
		t.Fatalf("unexpected wire for foreign error %+v", w)
	}
}
