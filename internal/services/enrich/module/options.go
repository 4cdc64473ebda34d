package module

import "newshound/internal/platform/config"

// Options holds configuration settings for the enrich module
type Options struct {
	Workers          int
	MaxRetries       int
	SearchMaxResults int
	DryRun           bool
	Audit            bool

	CostInputMTokUSD  float64
	CostOutputMTokUSD float64
	CostSearchUSD     float64
}

// FromConfig reads the CORE_ENRICH_ block. Zero cost rates are legal and
// simply price that leg at nothing
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_ENRICH_")
	return Options{
		Workers:          ef.MayInt("WORKERS", 2),
		MaxRetries:       ef.MayInt("MAX_RETRIES", 3),
		SearchMaxResults: ef.MayInt("SEARCH_MAX_RESULTS", 5),
		DryRun:           ef.MayBool("DRY_RUN", false),
		Audit:            ef.MayBool("AUDIT", false),

		CostInputMTokUSD:  ef.MayFloat64("COST_INPUT_MTOK_USD", 0),
		CostOutputMTokUSD: ef.MayFloat64("COST_OUTPUT_MTOK_USD", 0),
		CostSearchUSD:     ef.MayFloat64("COST_SEARCH_USD", 0),
	}
}
