// Package module implements the transcripts service module
package module

import (
	"murmur/internal/modkit"
	"murmur/internal/modkit/repokit"
	phttp "murmur/internal/platform/net/http"
	hotdom "murmur/internal/services/hottier/domain"
	hotrepo "murmur/internal/services/hottier/repo"
	"murmur/internal/services/transcripts/domain"
	thttp "murmur/internal/services/transcripts/http"
	"murmur/internal/services/transcripts/repo"
	"murmur/internal/services/transcripts/service"
)

// Ports exposed by the transcripts module
type Ports struct {
	Reader   domain.ReaderPort
	Writer   domain.WriterPort
	Registry domain.RegistryPort
	Sweeper  domain.SweeperPort
	Notifier domain.NotifierPort
	Hot      hotdom.Port
}

// Module implements the transcripts service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new transcripts module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	hot := hotrepo.New(deps.RDS, hotrepo.Config{
		TTL:        opts.HotTTL,
		SpeakerTTL: opts.SpeakerTTL,
		Prefix:     opts.KeyPrefix,
	})
	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, hot)

	notifier := service.NewNotifier(deps.RDS, service.NotifierConfig{
		URL:    opts.NotifyURL,
		Delay:  opts.NotifyDelay,
		Poll:   opts.NotifyPoll,
		Prefix: opts.KeyPrefix,
	})
	sweeper := service.NewSweeper(hot, svc, notifier, service.SweeperConfig{
		Interval:  opts.SweepInterval,
		Threshold: opts.ImmutabilityThreshold,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Reader:   svc,
		Writer:   svc,
		Registry: svc,
		Sweeper:  sweeper,
		Notifier: notifier,
		Hot:      hot,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "transcripts" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	thttp.Register(r, m.ports.Reader)
}
