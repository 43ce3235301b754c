//go:build unix && !linux && !openbsd

package kernel

import (
	"golang.org/x/sys/unix"

	"go.dw1.io/proc/trap"
)

// Native returns a trap surface for platforms without a narrowing
// mechanism. Program replacement and identity queries still work;
// every narrowing trap reports ENOSYS.
func Native() trap.Caller {
	return caller{}
}

type caller struct{}

func (caller) Exec(path trap.String, argv, envp trap.Vector) int64 {
	return rcFromError(unix.Exec(path.Value(), argv.Strings(), envp.Strings()))
}

func (caller) ThreadID() int64 {
	// No portable thread identifier; the process identifier at least
	// stays stable for the main thread.
	return int64(unix.Getpid())
}

func (caller) Pledge(promises, execPromises trap.String) int64 {
	return -int64(unix.ENOSYS)
}

func (caller) Unveil(path, permissions trap.String) int64 {
	return -int64(unix.ENOSYS)
}

func (caller) Chroot(path trap.String, mountFlags int) int64 {
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
