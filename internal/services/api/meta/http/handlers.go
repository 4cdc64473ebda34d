// Package http serves the meta surface: liveness, readiness, build
// info, and the enrichment pipeline shape.
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"newshound/internal/core/enrichment"
	"newshound/internal/core/version"
	"newshound/internal/modkit/httpkit"
)

// Pinger matches what the store seams expose, without importing them
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps carry what the probes inspect. The seams stay any so this
// package never imports the store.
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes on r.
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/pipeline", h.pipeline)
}

//
// response DTOs, doubling as swagger models
//

// HealthResponse says the process is up and since when.
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"newshound-api"`
	Started string `json:"started"  example:"2025-08-03T13:00:00Z"`
	Now     string `json:"now"      example:"2025-08-03T13:05:00Z"`
}

// ReadyCheck reports one backend probe.
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok, fail, skipped for an unwired seam, unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse aggregates the backend probes.
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-08-03T13:05:00Z"`
}

// ServiceResponse names the process and its uptime.
type ServiceResponse struct {
	Name    string `json:"name"    example:"newshound-api"`
	Started string `json:"started" example:"2025-08-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// PipelineResponse reports the enrichment graph shape and build info
type PipelineResponse struct {
	Stages     []string          `json:"stages"`
	Strategies []string          `json:"strategies"`
	MaxRetries int               `json:"max_retries" example:"3"`
	Build      version.BuildInfo `json:"build"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Process liveness
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness, probing postgres and clickhouse
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	pg := check("pg", h.deps.PG)
	ch := check("ch", h.deps.CH)

	overall := "ok"
	if pg.Status != "ok" || ch.Status != "ok" {
		overall = "degraded"
		if pg.Status == "fail" || ch.Status == "fail" {
			overall = "fail"
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pg, ch},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build metadata
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service name and uptime
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}

// swagger:route GET /meta/pipeline Meta metaPipeline
// @Summary Enrichment graph stages and search ladder
// @Tags Meta
// @Produce json
// @Success 200 type PipelineResponse ok
// @Router /meta/pipeline [get]
func (h *handlers) pipeline(_ *http.Request) (any, error) {
	stages := []string{
		string(enrichment.StageExtract),
		string(enrichment.StageSearch),
		string(enrichment.StageValidate),
		string(enrichment.StageMerge),
		string(enrichment.StageComplete),
		string(enrichment.StageEscalate),
	}
	strategies := make([]string, 0, len(enrichment.StrategyOrder))
	for _, s := range enrichment.StrategyOrder {
		strategies = append(strategies, string(s))
	}
	return PipelineResponse{
		Stages:     stages,
		Strategies: strategies,
		MaxRetries: enrichment.DefaultMaxRetries,
		Build:      version.Info(),
	}, nil
}
