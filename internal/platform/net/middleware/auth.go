package middleware

import (
	"net/http"

	"newshound/internal/platform/logger"
	pnet "newshound/internal/platform/net"
)

// AuthPort turns a request into a reviewer identity.
type AuthPort interface {
	// Parse yields the user id, or an error to reject the request with
	Parse(r *http.Request) (userID string, err error)
}

// Auth rejects requests the port refuses and stamps the user onto the
// context. A nil port leaves the chain open
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithUser(r.Context(), uid)
			// downstream logger.C calls pick up who acted on the request
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
