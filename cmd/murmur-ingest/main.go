package main

import (
	"context"
	"os/signal"
	"syscall"

	"murmur/internal/modkit"
	"murmur/internal/modkit/module"
	"murmur/internal/platform/config"
	"murmur/internal/platform/logger"
	"murmur/internal/platform/store"

	ingestmod "murmur/internal/services/ingest/module"
	transcriptsmod "murmur/internal/services/transcripts/module"
	"murmur/internal/services/transcripts/repo"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "murmur-ingest",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      pgCfg.MustString("DBURL"),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 4)),
		},
		RDS: store.RedisConfig{
			Enabled: true,
			Addr:    rdsCfg.MustString("ADDR"),
			DB:      rdsCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := repo.EnsureSchema(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("schema bootstrap failed")
	}

	deps := modkit.Deps{
		Log: *l,
		Cfg: root,
		PG:  st.PG,
		RDS: st.RDS,
	}

	tm := transcriptsmod.New(deps)
	module.Register(tm.Name(), tm.Ports())
	tports := module.MustPortsOf[transcriptsmod.Ports](tm)

	im := ingestmod.New(deps, tports.Hot, tports.Registry)
	module.Register(im.Name(), im.Ports())
	iports := module.MustPortsOf[ingestmod.Ports](im)

	errCh := make(chan error, 3)
	go func() { errCh <- iports.Runner.Run(ctx) }()
	go func() { errCh <- tports.Sweeper.Run(ctx) }()
	go func() { errCh <- tports.Notifier.Run(ctx) }()

	select {
	case <-ctx.Done():
		l.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			l.Fatal().Err(err).Msg("pipeline loop failed")
		}
	}
}
