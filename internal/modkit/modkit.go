package modkit

import (
	phttp "newshound/internal/platform/net/http"
)

// Module is what every service module (review, enrich, meta) looks like
// from the outside. Kept minimal so modules stay decoupled.
type Module interface {
	// MountRoutes registers the module's HTTP routes on the router seam
	MountRoutes(r phttp.Router)
	// Ports exposes the module's port set for cross wiring
	Ports() any

	// Name identifies the module in the registry and in panics
	Name() string
}

// Builder is the constructor shape modules export as New.
type Builder func(Deps, ...Option) Module
