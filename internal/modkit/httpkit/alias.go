// Package httpkit is the surface modules program against. It re-exports
// the platform http types and adds the mount and middleware helpers, so
// feature code never imports internal/platform/net/http itself.
package httpkit

import (
	"net/http"

	phttp "newshound/internal/platform/net/http"
)

type (
	// Envelope is the JSON envelope every response body uses
	Envelope = phttp.Envelope

	// Response pairs an envelope with the status to write
	Response = phttp.Response

	// Handler is the envelope-returning handler modules implement
	Handler = phttp.Handler

	// Router is the mount seam handed to module Register hooks
	Router = phttp.Router
)

// JSON binds the request body into T with strict decoding and validate
// tags, then hands it to fn. The DTO's tags are its input contract.
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return phttp.JSONHandler(fn)
}

// Call adapts a bodyless handler, for GETs and deletes.
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.JSONHandlerNoBody(fn)
}
