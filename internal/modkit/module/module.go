// Package module holds the module contract and the port registry. It sits
// below modkit so a module can export ports without importing modkit back.
package module

import (
	phttp "newshound/internal/platform/net/http"
)

// Module mirrors modkit.Module at this level of the import graph.
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
