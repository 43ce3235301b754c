//go:build openbsd

package kernel

import (
	"golang.org/x/sys/unix"

	"go.dw1.io/proc/trap"
)

// Native returns the trap surface backed by the running OpenBSD
// kernel, where both narrowing primitives exist natively.
func Native() trap.Caller {
	return caller{}
}

type caller struct{}

func (caller) Exec(path trap.String, argv, envp trap.Vector) int64 {
	return rcFromError(unix.Exec(path.Value(), argv.Strings(), envp.Strings()))
}

func (caller) ThreadID() int64 {
	tid, _, _ := unix.RawSyscall(unix.SYS_GETTHRID, 0, 0, 0)
	return int64(tid)
}

func (caller) Pledge(promises, execPromises trap.String) int64 {
	return rcFromError(unix.Pledge(promises.Value(), execPromises.Value()))
}

func (caller) Unveil(path, permissions trap.String) int64 {
	if path.Value() == "" && permissions.Value() == "" {
		return rcFromError(unix.UnveilBlock())
	}
	return rcFromError(unix.Unveil(path.Value(), permissions.Value()))
}

func (caller) Chroot(path trap.String, mountFlags int) int64 {
	// Mount-namespace flags are not part of the OpenBSD chroot trap.
	if mountFlags != -1 {
		return -int64(unix.ENOSYS)
	}
	return rcFromError(unix.Chroot(path.Value()))
}

func (caller) SetUID(uid uint32) int64 {
	return rcFromError(unix.Setuid(int(uid)))
}

func (caller) SetGID(gid uint32) int64 {
	return rcFromError(unix.Setgid(int(gid)))
}
