// Package middleware wraps the chi middlewares the service uses and adds
// the in-house ones: zerolog access logging, JSON panic recovery, auth.
package middleware

import (
	"net/http"
	"time"

	"newshound/internal/platform/logger"
	pnet "newshound/internal/platform/net"
)

// AccessLogOptions configures the access log.
type AccessLogOptions struct {
	// Slow promotes requests at or over this duration to warn; 0 disables
	Slow time.Duration
}

// captureWriter records the status and byte count the handler produced.
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	if n > 0 {
		cw.bytes += n
	}
	return n, err
}

// AccessLogZerolog emits one line per request: method, path, status,
// elapsed, bytes, and the request id when present.
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			log := logger.C(r.Context())
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			if reqID := pnet.RequestID(r.Context()); reqID != "" {
				evt = evt.Str("request_id", reqID)
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
