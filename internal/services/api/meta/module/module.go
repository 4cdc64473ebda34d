// Package module packages the meta surface as a mountable module
package module

import (
	"net/http"
	"time"

	"newshound/internal/core/version"
	modkit "newshound/internal/modkit"
	"newshound/internal/modkit/httpkit"
	"newshound/internal/modkit/swaggerkit"
	str "newshound/internal/platform/strings"

	metahttp "newshound/internal/services/api/meta/http"
)

// Module hosts the meta surface, probes plus build info
type Module struct {
	deps      modkit.Deps
	name      string
	prefix    string
	mws       []func(http.Handler) http.Handler
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	startedAt time.Time
}

// New builds the module. Callers may override the name and prefix through
// options, the defaults put it at /meta
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		startedAt: time.Now(),
	}

	// pin the served doc version to the binary instead of the annotation
	if m.swaggerOn {
		swaggerkit.Register(func(spec map[string]any) {
			if info, ok := spec["info"].(map[string]any); ok {
				info["version"] = version.Info().Version
			}
		})
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: "newshound-api",
			StartedAt:   m.startedAt,
			PG:          deps.PG,
			CH:          deps.CH,
		})
		if external != nil {
			external(r)
		}
	}

	return m
}

// MountRoutes attaches the meta routes under the module prefix
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

// Name falls back to meta when an option blanked it
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix always answers with a leading slash
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares exposes the per-module stack for inspection
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports is nil, nothing upstream consumes meta
func (m *Module) Ports() any { return nil }
