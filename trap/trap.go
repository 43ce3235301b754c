package trap

import "syscall"

// Errno is the failure code carried by a negative trap result.
type Errno = syscall.Errno

// Caller is the trap surface this module layers policy on top of. Each
// method invokes exactly one kernel trap and returns its raw signed
// result under the convention decoded by [Check].
//
// Implementations are provided by the kernel package (backed by the
// running kernel) and by test fakes. Callers treat every trap as an
// opaque, blocking operation: no retries, no timeouts, no cancellation.
type Caller interface {
	// Exec replaces the calling process image. Against a real kernel
	// it does not return on success; a non-negative result is only
	// observable from in-process fakes.
	Exec(path String, argv, envp Vector) int64

	// ThreadID reports the calling thread's numeric identifier.
	ThreadID() int64

	// Pledge narrows the process's promise set. Both operands are
	// opaque; the kernel owns their grammar and enforces that narrowing
	// is monotonic.
	Pledge(promises, execPromises String) int64

	// Unveil adds one entry to the process's path-visibility
	// allow-list. Sentinel operand combinations (such as an empty path
	// locking the list) are kernel-defined and pass through
	// uninterpreted.
	Unveil(path, permissions String) int64

	// Chroot changes the process root directory. A mountFlags value of
	// -1 means no mount-flag change.
	Chroot(path String, mountFlags int) int64

	// SetUID and SetGID change the process identity.
	SetUID(uid uint32) int64
	SetGID(gid uint32) int64
}

// Check applies the trap result convention: a non-negative raw result
// is returned unchanged with a nil error; a negative raw result yields
// -1 and the negated code as an [Errno].
//
// Check must be applied exactly once per trap invocation. Feeding an
// already-checked value back through it would double-translate the
// failure.
func Check(rc int64) (int64, error) {
	if rc < 0 {
		return -1, Errno(-rc)
	}
	return rc, nil
}
