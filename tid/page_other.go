//go:build !linux

package tid

// acquire backs the slot with ordinary memory. Without a
// zero-on-inherit mapping primitive exposed for this platform the
// duplication guarantee is weaker: a duplicated process sees the
// parent's cached value until something resets the slot. OpenBSD's
// minherit(MAP_INHERIT_ZERO) would close that gap once x/sys exposes
// it.
func (c *Cache) acquire() {
	c.words = make([]int64, 1)
	c.slot = &c.words[0]
}

func (c *Cache) release() {}
