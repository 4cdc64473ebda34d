// Package api assembles the review and meta modules into the served
// surface. It owns wiring order, nothing domain-shaped lives here
package api

import (
	"newshound/internal/platform/config"
	"newshound/internal/platform/logger"
	phttp "newshound/internal/platform/net/http"
	"newshound/internal/platform/store"

	"newshound/internal/modkit"
	"newshound/internal/modkit/httpkit"
	"newshound/internal/modkit/module"
	"newshound/internal/modkit/swaggerkit"

	metamod "newshound/internal/services/api/meta/module"
	reviewmod "newshound/internal/services/api/review/module"
)

// Options is everything Mount needs from the binary that hosts the API
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount assembles the module list and hangs the whole surface off r
func Mount(r phttp.Router, opt Options) {
	// one Deps bundle, shared by every module constructor
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps, modkit.WithSwagger(opt.EnableSwagger)),
		reviewmod.New(deps, modkit.WithSwagger(opt.EnableSwagger)),
	}

	// everything below lands under /api/v1 behind the common stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// docs and pprof mount on the root router, outside the version prefix
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// ports go into the registry keyed by module name, so modules can
			// look each other up without import cycles
			module.Register(m.Name(), m.Ports())

			m.MountRoutes(api)
		}
	})
}
