// Package raw reads environment variables during bootstrap, before the
// logger or full config layer exist. It must not import either of them.
package raw

import (
	"os"
	"strings"
)

// Conf is a namespaced view over the environment ("LOG_", "API_").
type Conf struct{ prefix string }

// New returns the root view with no prefix.
func New() Conf { return Conf{} }

// Prefix narrows the view by another segment, so
// New().Prefix("API_").Prefix("LOG_") reads API_LOG_* vars.
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// Get returns the trimmed value of the var, or def when unset or blank.
func (c Conf) Get(key, def string) string {
	v := strings.TrimSpace(os.Getenv(c.key(key)))
	if v == "" {
		return def
	}
	return v
}

// GetBool treats "1", "true" and "yes" as true; unset or blank means def.
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(c.key(key))))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt accepts only unsigned decimal digits. Anything else, including a
// sign or an empty value, falls back to def.
func (c Conf) GetInt(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(c.key(key)))
	if s == "" {
		return def
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
