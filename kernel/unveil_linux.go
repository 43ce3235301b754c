//go:build linux

package kernel

import (
	"sync"

	"github.com/landlock-lsm/go-landlock/landlock"
	llsys "github.com/landlock-lsm/go-landlock/landlock/syscall"
	"golang.org/x/sys/unix"
)

// veilState implements the path-visibility allow-list on Landlock.
//
// Landlock takes every rule up front and enforces the set once, so the
// backend accumulates entries until the list is locked (the empty-path,
// empty-permissions sentinel) and then restricts the whole process.
// Entries added after the lock are refused, matching the kernel-side
// contract that the list only ever narrows.
type veilState struct {
	mu     sync.Mutex
	rules  []landlock.Rule
	locked bool
}

func (v *veilState) unveil(path, permissions string) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return -int64(unix.EPERM)
	}

	if path == "" {
		// Only the lock sentinel is supported on this backend.
		if permissions != "" {
			return -int64(unix.EINVAL)
		}
		if err := landlock.V5.BestEffort().RestrictPaths(v.rules...); err != nil {
			return rcFromError(err)
		}
		v.locked = true
		return 0
	}

	access, ok := accessSetForPermissions(permissions)
	if !ok {
		return -int64(unix.EINVAL)
	}

	v.rules = append(v.rules, landlock.PathAccess(access, path))
	return 0
}

// accessSetForPermissions maps an unveil permission string onto a
// Landlock access set. Recognized markers are r (read), w (write),
// x (execute), and c (create/remove). Order and repetition are
// irrelevant; any other byte rejects the whole string.
func accessSetForPermissions(permissions string) (landlock.AccessFSSet, bool) {
	if permissions == "" {
		return 0, false
	}

	var access landlock.AccessFSSet
	for i := 0; i < len(permissions); i++ {
		switch permissions[i] {
		case 'r':
			access |= landlock.AccessFSSet(llsys.AccessFSReadFile | llsys.AccessFSReadDir)
		case 'w':
			access |= landlock.AccessFSSet(llsys.AccessFSWriteFile | llsys.AccessFSTruncate | llsys.AccessFSIoctlDev)
		case 'x':
			access |= landlock.AccessFSSet(llsys.AccessFSExecute)
		case 'c':
			access |= landlock.AccessFSSet(llsys.AccessFSMakeReg | llsys.AccessFSMakeDir |
				llsys.AccessFSMakeSock | llsys.AccessFSMakeFifo | llsys.AccessFSMakeBlock |
				llsys.AccessFSMakeChar | llsys.AccessFSMakeSym |
				llsys.AccessFSRemoveFile | llsys.AccessFSRemoveDir | llsys.AccessFSRefer)
		default:
			return 0, false
		}
	}

	return access, true
}
