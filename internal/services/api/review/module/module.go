// Package module wires review into the API using modkit
package module

import (
	"net/http"

	modkit "newshound/internal/modkit"
	"newshound/internal/modkit/httpkit"
	str "newshound/internal/platform/strings"
	reviewhttp "newshound/internal/services/api/review/http"
	reviewrepo "newshound/internal/services/api/review/repo"
	reviewsvc "newshound/internal/services/api/review/service"
)

// Module hosts the review queue surface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc reviewsvc.Service
}

// New wires repo, service, and token auth, then packages them as a module
// mounted at /review
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("review"), modkit.WithPrefix("/review")}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	repo := reviewrepo.NewPG()
	svc := reviewsvc.New(deps.PG, repo)
	auth := newTokenPort(cfg.Tokens)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptReviewPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		reviewhttp.Register(r, m.svc, auth)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes attaches the review routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name panics on empty, the registry keys off it
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix always answers with a leading slash
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares exposes the per-module stack for inspection
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
