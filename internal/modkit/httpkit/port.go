package httpkit

import (
	"net/http"
	"strings"

	perrs "newshound/internal/platform/errors"
)

// TokenFunc resolves a bearer token to a reviewer id.
type TokenFunc func(token string) (userID string, err error)

// Port adapts a TokenFunc to middleware.AuthPort. It owns the header
// parsing; the func only judges the token.
type Port struct {
	parse TokenFunc
}

// NewPortFunc wraps a bare parser func as a Port.
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse pulls the reviewer id out of the Authorization header.
// Missing, malformed, and rejected tokens all come back unauthorized.
func (p *Port) Parse(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	s := strings.TrimSpace(authz)
	if s == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	ls := strings.ToLower(s)
	const prefix = "bearer"
	if !strings.HasPrefix(ls, prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	// cut the scheme word, then whatever spacing separates it from the token
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}

	if p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}

	uid, err := p.parse(raw)
	if err != nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return uid, nil
}
