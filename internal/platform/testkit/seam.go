package testkit

import (
	"sync"
	"testing"
)

var serialMu sync.Mutex

// Swap replaces a package-level function variable for the duration of the
// test and restores the original in cleanup.
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a global lock for the whole test. Tests that mutate shared
// seams call it first so swaps never bleed across parallel tests.
func Serial(t *testing.T) {
	t.Helper()
	serialMu.Lock()
	t.Cleanup(func() { serialMu.Unlock() })
}
