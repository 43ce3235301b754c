//go:build unix

package kernel

import (
	"errors"

	"golang.org/x/sys/unix"
)

// rcFromError folds a wrapper-level error back into a raw trap result.
// A nil error is success; an unrecognizable error maps to EIO so the
// convention still holds.
func rcFromError(err error) int64 {
	if err == nil {
		return 0
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int64(errno)
	}
	return -int64(unix.EIO)
}
