// Package module implements the enrich module
package module

import (
	"net/http"

	"newshound/internal/modkit"
	"newshound/internal/modkit/httpkit"
	"newshound/internal/services/enrich/domain"
	"newshound/internal/services/enrich/service"
)

// Ports exposed by the enrich module
type Ports struct {
	Runner domain.RunnerPort
}

// Module packages the pipeline runner for registry consumers. It mounts
// no routes, the runner is its whole surface
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New validates the wiring, folds overrides into env config, and builds
// the runner
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("enrich"),
	}, opts...)...)

	// fail at construction, not mid-batch
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("enrich module: expected WithPorts(enrich/domain.Ports)")
	}
	if ports.Incidents == nil || ports.Searcher == nil || ports.Extractor == nil {
		panic("enrich module: Ports missing Incidents, Searcher or Extractor")
	}

	// env first, then explicit overrides on top
	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.MaxRetries != 0 {
		cfg.MaxRetries = overrides.MaxRetries
	}
	if overrides.SearchMaxResults != 0 {
		cfg.SearchMaxResults = overrides.SearchMaxResults
	}
	if overrides.CostInputMTokUSD != 0 {
		cfg.CostInputMTokUSD = overrides.CostInputMTokUSD
	}
	if overrides.CostOutputMTokUSD != 0 {
		cfg.CostOutputMTokUSD = overrides.CostOutputMTokUSD
	}
	if overrides.CostSearchUSD != 0 {
		cfg.CostSearchUSD = overrides.CostSearchUSD
	}
	// bool overrides win (default false if caller didn't set)
	cfg.DryRun = overrides.DryRun
	if overrides.Audit {
		cfg.Audit = true
	}

	// Outcomes only matter when runs persist
	if !cfg.DryRun && ports.Outcomes == nil {
		panic("enrich module: Ports missing Outcomes (required unless dry run)")
	}
	// The audit trail is opt-in; a wired port stays dormant when disabled
	if !cfg.Audit {
		ports.Audit = nil
	}

	runner := service.New(ports, service.Config{
		Workers:           cfg.Workers,
		MaxRetries:        cfg.MaxRetries,
		SearchMaxResults:  cfg.SearchMaxResults,
		DryRun:            cfg.DryRun,
		CostInputMTokUSD:  cfg.CostInputMTokUSD,
		CostOutputMTokUSD: cfg.CostOutputMTokUSD,
		CostSearchUSD:     cfg.CostSearchUSD,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: runner}
	return m
}

// Name keys the ports registry
func (m *Module) Name() string { return "enrich" }

// Ports exposes the runner for the registry
func (m *Module) Ports() any { return m.ports }

// Prefix is empty, nothing to mount
func (m *Module) Prefix() string { return "" }

// Middlewares is nil for the same reason Prefix is empty
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes is a no-op, the module is batch-only
func (m *Module) MountRoutes(_ httpkit.Router) {}
