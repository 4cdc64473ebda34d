package net

import (
	"net/http"

	perr "newshound/internal/platform/errors"
)

// HTTPStatus resolves the status an error should answer with.
// A nil error answers 200 so success paths can share the call.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return perr.HTTPStatus(err)
}
