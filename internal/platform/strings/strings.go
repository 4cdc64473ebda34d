// Package strings holds the handful of string and slice helpers shared
// across modules. Import it as pstrings to keep stdlib strings usable.
package strings

import std "strings"

// IfEmpty substitutes def when in has no elements.
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Contains re-exports strings.Contains for callers already using pstrings.
func Contains(s, sub string) bool { return std.Contains(s, sub) }

// MustString panics when s is blank; name says which value was missing.
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a mount path like /review or /meta to a single
// leading slash with no trailing one, and panics on a bare or empty root.
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}
