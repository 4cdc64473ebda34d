// Package http is the platform HTTP layer: the chi-backed server, the
// router seam modules mount against, and the JSON response envelope.
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "newshound/internal/platform/errors"
	lumnet "newshound/internal/platform/net"
)

// Envelope is the body shape every endpoint returns, success or error.
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status.
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response lets handlers return a value instead of writing to w, which
// keeps early returns tidy.
type Response struct {
	Status int
	Body   any
	// extra headers, if the handler wants any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http.
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if resp.Header != nil {
		for k, vv := range resp.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}

	reqID := lumnet.RequestID(r.Context())

	// an error body decides its own status; ignore resp.Status for it
	if err, ok := resp.Body.(error); ok && err != nil {
		status = perr.HTTPStatus(err)
		wr := perr.WireFrom(err)
		JSON(w, status, Envelope{
			StatusCode: status,
			Status:     stdhttp.StatusText(status),
			Code:       wr.Code,
			Error:      wr.Message,
			RequestID:  reqID,
		})
		return
	}

	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  reqID,
		Data:       resp.Body,
	})
}

// OK wraps data in a 200 response.
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error defers to the envelope writer to map err onto status and body.
func Error(err error) Response { return Response{Body: err} }
