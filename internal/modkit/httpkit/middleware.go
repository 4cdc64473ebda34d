package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "newshound/internal/platform/net/http"
	"newshound/internal/platform/net/middleware"
)

// CommonStack is the baseline middleware every mounted module gets. Auth
// layers on top of it in main where a module needs protection.
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation first so everything downstream can log request ids
		middleware.RequestID(),
		middleware.RealIP(),

		middleware.RecoverJSON,

		middleware.NoCache(),

		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),

		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// Auth builds the auth middleware with the platform JSON writer, so 401s
// share the response envelope.
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
