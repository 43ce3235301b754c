//go:build linux

package tid

import (
	"runtime"
	"testing"

	"golang.org/x/sys/unix"
)

func TestNativeIDMatchesGettid(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c := New()
	defer c.Close()

	want := int32(unix.Gettid())
	if got := c.ID(); got != want {
		t.Fatalf("ID = %d, want %d", got, want)
	}
	// Second query must come from the page, and still match.
	if got := c.ID(); got != want {
		t.Fatalf("cached ID = %d, want %d", got, want)
	}
}

func TestPageIsMappedAndReleased(t *testing.T) {
	c := New()
	if c.mapped == nil {
		t.Fatal("cache not backed by a mapped page")
	}
	c.Close()
	if c.mapped != nil {
		t.Fatal("Close did not release the mapping")
	}
}
