// Package http exposes transcript retrieval endpoints
package http

import (
	stdhttp "net/http"
	"strconv"

	perr "murmur/internal/platform/errors"
	phttp "murmur/internal/platform/net/http"
	"murmur/internal/services/transcripts/domain"
)

type handlers struct {
	reader domain.ReaderPort
}

// Register mounts transcript routes on the router seam
func Register(r phttp.Router, reader domain.ReaderPort) {
	h := &handlers{reader: reader}
	r.Get("/transcripts/{platform}/{meetingID}", h.transcript)
}

// transcript serves the merged finalized plus pending view for a meeting
func (h *handlers) transcript(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	platform := phttp.Param(r, "platform")
	rawID := phttp.Param(r, "meetingID")

	meetingID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || meetingID <= 0 {
		phttp.RespondError(w, perr.InvalidArgf("meeting id must be a positive integer, got %q", rawID))
		return
	}
	if platform == "" {
		phttp.RespondError(w, perr.InvalidArgf("platform is required"))
		return
	}

	t, err := h.reader.Transcript(r.Context(), platform, meetingID)
	if err != nil {
		phttp.RespondError(w, err)
		return
	}
	phttp.RespondOK(w, t)
}
