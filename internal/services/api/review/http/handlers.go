// Package http provides http transport for review
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"newshound/internal/modkit/httpkit"
	"newshound/internal/platform/net/middleware"
	"newshound/internal/services/api/review/domain"
	svc "newshound/internal/services/api/review/service"
)

// Register mounts review endpoints on the given router. Resolve goes behind
// bearer auth, the read endpoints stay open
func Register(r httpkit.Router, s svc.Service, auth middleware.AuthPort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.ListInput](r, "/list", h.list)
	httpkit.PostJSON[domain.StatsInput](r, "/stats", h.stats)
	httpkit.Get(r, "/runs/{run_id}", h.get)

	httpkit.Protected(r, auth, func(pr httpkit.Router) {
		httpkit.PostJSON[domain.ResolveInput](pr, "/resolve", h.resolve)
	})
}

type handlers struct{ svc svc.Service }

// swagger:route POST /review/list Review reviewList
// @Summary Review queue page, newest runs first
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body domain.ListInput true "Filters and cursor"
// @Success 200 {object} domain.ListOutput "ok"
// @Router /review/list [post]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	return h.svc.List(r.Context(), in)
}

// swagger:route GET /review/runs/{run_id} Review reviewGet
// @Summary Full persisted outcome for one run
// @Tags Review
// @Produce json
// @Param run_id path string true "Run UUID"
// @Success 200 {object} domain.RunDetail "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /review/runs/{run_id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "run_id"))
}

// swagger:route POST /review/stats Review reviewStats
// @Summary Run counts by status and escalation reason over a window
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body domain.StatsInput true "Window"
// @Success 200 {array} domain.StatsRow "ok"
// @Router /review/stats [post]
func (h *handlers) stats(r *stdhttp.Request, in domain.StatsInput) (any, error) {
	return h.svc.Stats(r.Context(), in)
}

// swagger:route POST /review/resolve Review reviewResolve
// @Summary Mark a run reviewed with an optional note
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.ResolveInput true "Run and note"
// @Success 200 {object} domain.ResolveOutput "ok"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Failure 409 {object} httpkit.Envelope "already reviewed"
// @Router /review/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.svc.Resolve(r.Context(), in)
}
