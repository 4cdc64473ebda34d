package httpkit

import (
	"newshound/internal/platform/net/middleware"
)

// Protected groups routes behind bearer auth. Handlers inside fn only run
// for requests the port accepts; everything else gets the JSON error wire
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
