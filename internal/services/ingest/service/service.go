// Package service contains the ingestion consumer workflows: segment and
// speaker-event loops, boundary validation, filtering, and attribution
package service

import (
	"time"

	"murmur/internal/core/textfilter"
	"murmur/internal/modkit"
	hotdom "murmur/internal/services/hottier/domain"
	"murmur/internal/services/ingest/domain"
	tdom "murmur/internal/services/transcripts/domain"
)

// Config carries runtime knobs for the consumer loops
type Config struct {
	SegmentStream string
	SpeakerStream string
	Group         string
	Consumer      string

	Batch int64
	Block time.Duration
	// PendingTimeout is the idle age after which another consumer may claim
	// a pending entry (default 60s)
	PendingTimeout time.Duration
	// ClaimInterval is the cadence of the periodic stale reclaim
	ClaimInterval time.Duration
	// ReadRetry paces re-reads after a failed blocking read (default 1s)
	ReadRetry time.Duration
}

// Svc implements the ingestion consumers
type Svc struct {
	deps   modkit.Deps
	cfg    Config
	queue  domain.QueuePort
	filter *textfilter.Filter
	hot    hotdom.Port
	reg    tdom.RegistryPort

	now func() time.Time // test seam
}

// New constructs the ingest service
func New(deps modkit.Deps, cfg Config, q domain.QueuePort, f *textfilter.Filter, hot hotdom.Port, reg tdom.RegistryPort) *Svc {
	if cfg.Batch <= 0 {
		cfg.Batch = 10
	}
	if cfg.Block <= 0 {
		cfg.Block = 2 * time.Second
	}
	if cfg.PendingTimeout <= 0 {
		cfg.PendingTimeout = 60 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 30 * time.Second
	}
	if cfg.ReadRetry <= 0 {
		cfg.ReadRetry = time.Second
	}
	return &Svc{
		deps:   deps,
		cfg:    cfg,
		queue:  q,
		filter: f,
		hot:    hot,
		reg:    reg,
		now:    time.Now,
	}
}
