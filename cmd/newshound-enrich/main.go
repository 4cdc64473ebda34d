package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"newshound/internal/modkit"
	"newshound/internal/modkit/module"
	"newshound/internal/platform/config"
	"newshound/internal/platform/logger"
	"newshound/internal/platform/store"

	"newshound/internal/adapters/llm/anthropic"
	"newshound/internal/adapters/news/tavily"

	"newshound/internal/core/enrichment"
	enrichdom "newshound/internal/services/enrich/domain"
	enrichmod "newshound/internal/services/enrich/module"
	enrichrepo "newshound/internal/services/enrich/repo"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	root := config.New()
	coreCfg := root.Prefix("CORE_ENRICH_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	tavCfg := root.Prefix("ADAPTER_TAVILY_")
	antCfg := root.Prefix("ADAPTER_ANTHROPIC_")
	l := logger.Get()

	var (
		dataset = flag.String("dataset", "", "incident dataset: civilians_shot or officers_shot (falls back to CORE_ENRICH_DATASET)")
		idsCSV  = flag.String("ids", "", "comma separated incident ids")
		fromID  = flag.Int64("from", 0, "inclusive start of an incident id range")
		toID    = flag.Int64("to", 0, "inclusive end of an incident id range")
		workers = flag.Int("workers", 0, "concurrency (>=1, 0 uses CORE_ENRICH_WORKERS)")
		dryRun  = flag.Bool("dry-run", false, "traverse but do not persist outcomes")
		audit   = flag.Bool("audit", false, "record per-hop stage events to clickhouse")
	)
	flag.Parse()

	dsName := *dataset
	if dsName == "" {
		dsName = coreCfg.MayEnum("DATASET", "",
			string(enrichment.DatasetCiviliansShot), string(enrichment.DatasetOfficersShot))
	}
	ds := enrichment.DatasetType(dsName)
	if !ds.Valid() {
		log.Fatalf("bad -dataset %q (want civilians_shot or officers_shot)", dsName)
	}
	var ids []string
	if *idsCSV != "" {
		for _, id := range strings.Split(*idsCSV, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 && *fromID <= 0 {
		log.Fatal("a worklist is required: -ids or -from/-to")
	}

	// Fail on missing adapter credentials before dialing anything
	tavCfg.Require("API_KEY")
	antCfg.Require("API_KEY")

	// The audit sink is opt-in from either side; clickhouse only dials when on
	auditOn := *audit || coreCfg.MayBool("AUDIT", false)

	stCfg := store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustURL("DBURL").String(),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}
	if auditOn {
		stCfg.CH = store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustURL("DBURL").String(),
			ClientName: "newshound",
			ClientTag:  chCfg.MayString("CLIENT_TAG", "enrich"),
		}
	}

	st, err := store.Open(context.Background(), stCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// Pass CLI flags into CORE_ENRICH_* so the module can read its own config
	if *workers > 0 {
		mustSetEnv("CORE_ENRICH_WORKERS", strconv.Itoa(*workers))
	}
	mustSetEnv("CORE_ENRICH_DRY_RUN", map[bool]string{true: "1", false: "0"}[*dryRun])
	mustSetEnv("CORE_ENRICH_AUDIT", map[bool]string{true: "1", false: "0"}[auditOn])

	searcher := tavily.NewClient(tavily.Options{
		BaseURL:    tavCfg.MayString("BASE_URL", ""),
		APIKey:     tavCfg.MustString("API_KEY"),
		Timeout:    tavCfg.MayDuration("TIMEOUT", 30*time.Second),
		MaxRetries: tavCfg.MayInt("MAX_RETRIES", 3),
		RetryBase:  tavCfg.MayDuration("RETRY_BASE", 500*time.Millisecond),
		RPS:        tavCfg.MayFloat64("RPS", 1),
		Burst:      tavCfg.MayInt("BURST", 1),
	})
	extractor := anthropic.New(anthropic.Options{
		APIKey:     antCfg.MustString("API_KEY"),
		Model:      antCfg.MayString("MODEL", ""),
		MaxTokens:  int64(antCfg.MayInt("MAX_TOKENS", 0)),
		Timeout:    antCfg.MayDuration("TIMEOUT", 0),
		MaxRetries: antCfg.MayInt("MAX_RETRIES", 3),
	})

	storage := enrichrepo.NewPG().Bind(st.PG)
	ports := enrichdom.Ports{
		Incidents: storage,
		Searcher:  searcher,
		Extractor: extractor,
		Outcomes:  storage,
	}
	if auditOn {
		ports.Audit = enrichrepo.NewAudit(st.CH)
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	em := enrichmod.New(
		deps,
		enrichmod.Options{
			Workers: *workers,
			DryRun:  *dryRun,
			Audit:   auditOn,
		},
		modkit.WithPorts(ports),
	)
	module.Register(em.Name(), em.Ports())

	runner := module.MustPortsOf[enrichmod.Ports](em).Runner
	rep, err := runner.RunBatch(context.Background(), enrichdom.BatchInput{
		Dataset:     ds,
		IncidentIDs: ids,
		FromID:      *fromID,
		ToID:        *toID,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("enrich failed")
	}

	l.Info().
		Int("total", rep.Total).
		Int("completed", rep.Completed).
		Int("escalated", rep.Escalated).
		Int("failed", rep.Failed).
		Float64("cost_usd", rep.CostUSD).
		Msg("enrich batch done")
}
