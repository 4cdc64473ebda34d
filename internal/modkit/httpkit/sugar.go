package httpkit

import (
	"net/http"
)

// PostJSON registers a body-decoding handler under POST.
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSON(h))
}

// Get registers a body-less handler wrapped in the response envelope.
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}
