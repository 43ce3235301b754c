// Package sandbox exposes the irreversible privilege-narrowing
// operations: promise declaration, the path-visibility allow-list,
// and the classic drop primitives (chroot, setuid, setgid).
//
// Every operation is one trap under the shared result convention, is
// meant to be called a small, fixed number of times early in a
// process's life, and is never reversed. The package performs no local
// subset validation: the kernel enforces that narrowing is monotonic,
// and a kernel refusal is returned unmasked.
//
// A whole narrowing sequence can also be described declaratively as a
// Profile and applied in one call; see LoadProfile and Apply.
package sandbox
