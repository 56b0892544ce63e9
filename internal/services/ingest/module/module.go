// Package module implements the ingest service module
package module

import (
	"murmur/internal/adapters/queue/redstream"
	"murmur/internal/core/textfilter"
	"murmur/internal/modkit"
	phttp "murmur/internal/platform/net/http"
	hotdom "murmur/internal/services/hottier/domain"
	"murmur/internal/services/ingest/domain"
	"murmur/internal/services/ingest/service"
	tdom "murmur/internal/services/transcripts/domain"
)

// Ports exposed by the ingest module
type Ports struct {
	Runner domain.RunnerPort
	Queue  domain.QueuePort
}

// Module implements the ingest service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new ingest module. The registry and hot tier come from
// the transcripts module so both processes share one wiring path
func New(deps modkit.Deps, hot hotdom.Port, reg tdom.RegistryPort) *Module {
	opts := FromConfig(deps.Cfg)

	filterOpts := []textfilter.Option{
		textfilter.WithMinLength(opts.MinLength),
		textfilter.WithMinRealWords(opts.MinRealWords),
	}
	if len(opts.FilterPatterns) > 0 {
		filterOpts = append(filterOpts, textfilter.WithPatterns(opts.FilterPatterns))
	}
	for lang, words := range opts.Stopwords {
		filterOpts = append(filterOpts, textfilter.WithStopwords(lang, words))
	}

	queue := redstream.New(deps.RDS)
	svc := service.New(deps, service.Config{
		SegmentStream:  opts.SegmentStream,
		SpeakerStream:  opts.SpeakerStream,
		Group:          opts.Group,
		Consumer:       opts.Consumer,
		Batch:          int64(opts.Batch),
		Block:          opts.Block,
		PendingTimeout: opts.PendingTimeout,
		ClaimInterval:  opts.ClaimInterval,
	}, queue, textfilter.New(filterOpts...), hot, reg)

	m := &Module{deps: deps}
	m.ports = Ports{
		Runner: svc,
		Queue:  queue,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ingest" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
