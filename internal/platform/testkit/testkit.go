// Package testkit holds helpers for tests that replace package-level seams
package testkit

import (
	"sync"
	"testing"
)

var serial sync.Mutex

// Swap sets *target to v until the test ends
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds a process-wide lock for the rest of the test.
// Tests that Swap shared seams and run in parallel take it first.
func Serial(t *testing.T) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}
