package main

import (
	"context"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"murmur/internal/modkit"
	"murmur/internal/modkit/module"
	"murmur/internal/platform/config"
	"murmur/internal/platform/logger"
	phttp "murmur/internal/platform/net/http"
	"murmur/internal/platform/net/middleware"
	"murmur/internal/platform/store"

	transcriptsmod "murmur/internal/services/transcripts/module"
	"murmur/internal/services/transcripts/repo"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("MURMUR_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "murmur-api",
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

	srv := phttp.NewServer(apiCfg)
	r := srv.Router()
	r.Use(middleware.RecoverJSON())
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{}))

	r.Get("/healthz", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		guardCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := st.Guard(guardCtx); err != nil {
			phttp.RespondError(w, err)
			return
		}
		phttp.RespondOK(w, map[string]any{"ok": true})
	})

	r.Route("/api/v1", func(sub phttp.Router) {
		tm.MountRoutes(sub)
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
