// Package kerneltest provides an in-process trap surface for tests.
//
// The fake models just enough kernel behavior to exercise the policy
// layered on top of it: an executable table for the execute trap, a
// monotonic promise set, a lockable path-visibility list, and a
// counter behind the identity trap. Every mutating call is also
// recorded in an ordered journal so tests can assert call order.
package kerneltest

import (
	"fmt"
	"strings"
	"sync"
	"syscall"

	"go.dw1.io/proc/trap"
)

// Kernel is a fake trap.Caller. The zero value is not usable; call New.
type Kernel struct {
	mu           sync.Mutex
	programs     map[string]syscall.Errno
	execAttempts []string
	lastArgv     []string
	lastEnvp     []string
	promises     map[string]bool
	pledged      bool
	veilLocked   bool
	unveils      [][2]string
	nextThreadID int64
	fetches      int
	journal      []string
}

var _ trap.Caller = (*Kernel)(nil)

// New returns an empty fake kernel: no programs exist, nothing is
// pledged or unveiled, and the first identity fetch reports 101.
func New() *Kernel {
	return &Kernel{
		programs:     make(map[string]syscall.Errno),
		nextThreadID: 100,
	}
}

// AddProgram registers path as an existing, executable program.
func (k *Kernel) AddProgram(path string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.programs[path] = 0
}

// FailProgram registers path as existing but failing to execute with
// the given code (for example EACCES for a non-executable file).
func (k *Kernel) FailProgram(path string, errno syscall.Errno) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.programs[path] = errno
}

// ExecAttempts reports every path handed to the execute trap, in order.
func (k *Kernel) ExecAttempts() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.execAttempts...)
}

// LastArgv reports the argument strings of the most recent execute trap.
func (k *Kernel) LastArgv() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.lastArgv...)
}

// LastEnvp reports the environment strings of the most recent execute trap.
func (k *Kernel) LastEnvp() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.lastEnvp...)
}

// Journal reports the ordered log of narrowing and execute operations.
func (k *Kernel) Journal() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.journal...)
}

// ThreadIDFetches reports how often the identity trap was consulted.
func (k *Kernel) ThreadIDFetches() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.fetches
}

// Unveils reports the recorded (path, permissions) allow-list entries.
func (k *Kernel) Unveils() [][2]string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([][2]string(nil), k.unveils...)
}

// Exec looks the path up in the program table. Missing entries report
// ENOENT, failing entries their registered code. A real execute trap
// never returns on success; the fake reports success as result 0 and
// leaves the attempt in the journal.
func (k *Kernel) Exec(path trap.String, argv, envp trap.Vector) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	name := path.Value()
	k.execAttempts = append(k.execAttempts, name)
	k.lastArgv = argv.Strings()
	k.lastEnvp = envp.Strings()
	k.journal = append(k.journal, "exec "+name)

	errno, ok := k.programs[name]
	if !ok {
		return -int64(syscall.ENOENT)
	}
	if errno != 0 {
		return -int64(errno)
	}
	return 0
}

// ThreadID hands out a fresh identifier on every fetch. A correctly
// caching caller therefore observes a stable value only as long as it
// does not re-fetch.
func (k *Kernel) ThreadID() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.fetches++
	k.nextThreadID++
	return k.nextThreadID
}

// Pledge enforces the kernel-side monotonicity rule: once a promise
// set is in place, a later set naming a promise outside it is refused
// with EPERM. An empty promises operand means no change.
func (k *Kernel) Pledge(promises, execPromises trap.String) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	requested := promises.Value()
	k.journal = append(k.journal, fmt.Sprintf("pledge %q %q", requested, execPromises.Value()))

	if requested == "" {
		return 0
	}

	words := strings.Fields(requested)
	if k.pledged {
		for _, w := range words {
			if !k.promises[w] {
				return -int64(syscall.EPERM)
			}
		}
	}

	k.promises = make(map[string]bool, len(words))
	for _, w := range words {
		k.promises[w] = true
	}
	k.pledged = true
	return 0
}

// Unveil records an allow-list entry; the empty/empty sentinel locks
// the list, after which any further call is refused with EPERM.
func (k *Kernel) Unveil(path, permissions trap.String) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	p, perms := path.Value(), permissions.Value()

	if k.veilLocked {
		return -int64(syscall.EPERM)
	}

	if p == "" && perms == "" {
		k.veilLocked = true
		k.journal = append(k.journal, "unveil-lock")
		return 0
	}

	for i := 0; i < len(perms); i++ {
		switch perms[i] {
		case 'r', 'w', 'x', 'c':
		default:
			return -int64(syscall.EINVAL)
		}
	}

	k.unveils = append(k.unveils, [2]string{p, perms})
	k.journal = append(k.journal, "unveil "+p+" "+perms)
	return 0
}

func (k *Kernel) Chroot(path trap.String, mountFlags int) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	p := path.Value()
	if p == "" {
		return -int64(syscall.EFAULT)
	}
	k.journal = append(k.journal, fmt.Sprintf("chroot %s %d", p, mountFlags))
	return 0
}

func (k *Kernel) SetUID(uid uint32) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.journal = append(k.journal, fmt.Sprintf("setuid %d", uid))
	return 0
}

func (k *Kernel) SetGID(gid uint32) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.journal = append(k.journal, fmt.Sprintf("setgid %d", gid))
	return 0
}
