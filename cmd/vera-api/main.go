// @title         VERA API
// @version       0.1.0
// @description   Deepfake detection for uploaded media, remote images and text
// @BasePath      /api

//go:generate go run github.com/swaggo/swag/v2/cmd/swag init --v3.1 -d ../../ -g cmd/vera-api/main.go -o ../../internal/services/api/docs

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vera/internal/modkit/repokit"
	"vera/internal/platform/config"
	"vera/internal/platform/logger"
	phttp "vera/internal/platform/net/http"
	"vera/internal/platform/store"

	"vera/internal/services/api"
	drepo "vera/internal/services/api/detect/repo"
)

func main() {
	// .env first so every scope below sees it; real env wins
	_ = config.LoadDotenv()
	logger.Init(logger.FromEnv())

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// history is optional, both stores are off unless enabled
	pgOn := pgCfg.MayBool("ENABLED", false)
	chOn := chCfg.MayBool("ENABLED", false)
	cfg := store.Config{
		AppName: "vera-api",
		PG:      store.PGConfig{Enabled: pgOn},
		CH:      store.CHConfig{Enabled: chOn},
	}
	if pgOn {
		cfg.PG = store.PGConfig{
			Enabled:   true,
			URL:       pgCfg.MustString("DBURL"),
			MaxConns:  int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQuery: pgCfg.MayDuration("SLOW_QUERY", 500*time.Millisecond),
			LogSQL:    pgCfg.MayBool("LOG_SQL", false),
		}
	}
	if chOn {
		cfg.CH = store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			ClientName: "vera",
			ClientTag:  "api",
		}
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*logger.Get()))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when an enabled store does not answer
	repokit.MustGuard(ctx, st)

	if st.PG != nil {
		if err := drepo.MigratePG(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("detections schema failed")
		}
	}
	if st.CH != nil {
		if err := drepo.MigrateCH(ctx, st.CH); err != nil {
			l.Panic().Err(err).Msg("detection_events schema failed")
		}
	}

	// http server (reads CORE_API_PORT, default 5000)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	// run until SIGINT/SIGTERM, then drain
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
