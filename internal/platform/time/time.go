// Package time holds time helpers shared by adapters. Import as ptime.
package time

import "time"

// Ptr converts a zero time to nil, for optional timestamp columns.
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
