package module

import (
	"strings"

	"newshound/internal/modkit/httpkit"
	perr "newshound/internal/platform/errors"
	"newshound/internal/platform/net/middleware"
)

// newTokenPort builds the bearer auth port for resolve from token entries.
// Entries are reviewer:token pairs; a bare token maps to the "reviewer"
// identity. No configured tokens means every resolve is rejected
func newTokenPort(entries []string) middleware.AuthPort {
	byToken := parseTokens(entries)
	return httpkit.NewPortFunc(func(token string) (string, error) {
		if name, ok := byToken[token]; ok {
			return name, nil
		}
		return "", perr.Unauthorizedf("unknown token")
	})
}

func parseTokens(entries []string) map[string]string {
	out := make(map[string]string)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, token, found := strings.Cut(entry, ":")
		if !found {
			out[entry] = "reviewer"
			continue
		}
		name, token = strings.TrimSpace(name), strings.TrimSpace(token)
		if name == "" || token == "" {
			continue
		}
		out[token] = name
	}
	return out
}
