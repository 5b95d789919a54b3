package testkit

import (
	"sync/atomic"
	"testing"
	"time"
)

var uploadDir = "/tmp/uploads"

func TestSwapRestores(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &uploadDir, "/var/vera")
		if uploadDir != "/var/vera" {
			t.Fatalf("uploadDir = %q", uploadDir)
		}
	})
	if uploadDir != "/tmp/uploads" {
		t.Fatalf("not restored: %q", uploadDir)
	}
}

func TestSerialExcludes(t *testing.T) {
	var inside, overlap atomic.Int32
	t.Run("group", func(t *testing.T) {
		for _, name := range []string{"a", "b", "c"} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				Serial(t)
				if inside.Add(1) > 1 {
					overlap.Add(1)
				}
				time.Sleep(10 * time.Millisecond)
				inside.Add(-1)
			})
		}
	})
	if overlap.Load() != 0 {
		t.Fatalf("%d subtests overlapped", overlap.Load())
	}
}
