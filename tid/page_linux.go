//go:build linux

package tid

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// acquire maps one anonymous, zero-initialized page and marks it to
// come back zeroed in any process that inherits it across a
// duplication. The wipe is enforced by the mapping configuration;
// nothing runs on the child path.
func (c *Cache) acquire() {
	page, err := unix.Mmap(-1, 0, os.Getpagesize(),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic(fmt.Sprintf("tid: mmap failed: %v", err))
	}
	if err := unix.Madvise(page, unix.MADV_WIPEONFORK); err != nil {
		_ = unix.Munmap(page)
		panic(fmt.Sprintf("tid: madvise(MADV_WIPEONFORK) failed: %v", err))
	}

	c.mapped = page
	c.slot = (*int64)(unsafe.Pointer(&page[0]))
}

func (c *Cache) release() {
	if c.mapped != nil {
		_ = unix.Munmap(c.mapped)
		c.mapped = nil
	}
}
