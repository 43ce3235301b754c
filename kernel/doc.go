// Package kernel provides the native trap backends.
//
// Native returns a [go.dw1.io/proc/trap.Caller] backed by the running
// kernel. Coverage is platform-dependent: Linux implements the
// path-visibility allow-list with Landlock and has no promise
// mechanism (Pledge reports ENOSYS); OpenBSD implements both natively.
// Traps a platform cannot express report ENOSYS rather than pretending
// to narrow anything.
package kernel
