// @title         Newshound API
// @version       0.1.0
// @description   Review-queue endpoints over enrichment runs

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization

package main

import (
	"context"

	"newshound/internal/platform/config"
	"newshound/internal/platform/logger"
	phttp "newshound/internal/platform/net/http"
	"newshound/internal/platform/store"

	"newshound/internal/services/api"
)

func main() {
	// every knob this binary reads is scoped under one of these prefixes
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	// logging first so store startup failures land somewhere
	l := logger.Get()

	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustURL("DBURL").String(),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			// clickhouse only backs the audit trail, the api dials it when configured
			CH: store.CHConfig{
				Enabled:    chCfg.MayString("DBURL", "") != "",
				URL:        chCfg.MayString("DBURL", ""),
				ClientName: "newshound",
				ClientTag:  chCfg.MayString("CLIENT_TAG", "api"),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (listen addr from CORE_API_API_PORT, default :4000)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
