// Package tid caches the calling thread's numeric identity behind a
// zero-on-inherit memory page.
//
// A Cache holds one page-sized anonymous mapping whose first word
// stores the identifier. The identity trap is issued once, on the
// first query; every later query reuses the stored value. On Linux the
// page is marked MADV_WIPEONFORK, so a process duplication hands the
// child a zeroed page and its first query re-fetches the child's own
// identifier — a cached value never leaks across the duplication
// boundary, and no code runs on the child path to make that so.
//
// A Cache is exclusively owned by one OS thread; pin the goroutine
// with runtime.LockOSThread before relying on the cached value.
// Failure to establish the backing mapping is not reported: the cache
// is load-bearing for diagnostics elsewhere, so New panics instead.
package tid
