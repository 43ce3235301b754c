//go:build linux

package kernel

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
	"kernel.org/pub/linux/libs/security/libcap/psx"

	"go.dw1.io/proc/trap"
)

// Native returns the trap surface backed by the running Linux kernel.
//
// The returned caller holds the pending path-visibility rules for this
// process; use a single caller per process so that every Unveil lands
// in the same allow-list.
func Native() trap.Caller {
	return &caller{}
}

type caller struct {
	veil veilState
}

func (c *caller) Exec(path trap.String, argv, envp trap.Vector) int64 {
	argvp := argv.Pointers()
	envpp := envp.Pointers()

	_, _, errno := unix.Syscall(unix.SYS_EXECVE,
		uintptr(unsafe.Pointer(path.Ptr)),
		uintptr(unsafe.Pointer(&argvp[0])),
		uintptr(unsafe.Pointer(&envpp[0])))

	runtime.KeepAlive(path)
	runtime.KeepAlive(argv)
	runtime.KeepAlive(envp)

	return -int64(errno)
}

func (c *caller) ThreadID() int64 {
	return int64(unix.Gettid())
}

// Pledge has no Linux analog; the promise mechanism is reported as
// unsupported rather than approximated by a weaker policy.
func (c *caller) Pledge(promises, execPromises trap.String) int64 {
	return -int64(unix.ENOSYS)
}

func (c *caller) Unveil(path, permissions trap.String) int64 {
	return c.veil.unveil(path.Value(), permissions.Value())
}

func (c *caller) Chroot(path trap.String, mountFlags int) int64 {
	// Linux chroot carries no mount flags.
	if mountFlags != -1 {
		return -int64(unix.ENOSYS)
	}
	return rcFromError(unix.Chroot(path.Value()))
}

// SetUID and SetGID go through psx so the identity change lands on
// every runtime thread, not just the one the scheduler happened to run
// this call on.
func (c *caller) SetUID(uid uint32) int64 {
	_, _, errno := psx.Syscall3(unix.SYS_SETUID, uintptr(uid), 0, 0)
	return -int64(errno)
}

func (c *caller) SetGID(gid uint32) int64 {
	_, _, errno := psx.Syscall3(unix.SYS_SETGID, uintptr(gid), 0, 0)
	return -int64(errno)
}
