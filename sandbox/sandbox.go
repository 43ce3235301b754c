package sandbox

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"

	"go.dw1.io/proc/kernel"
	"go.dw1.io/proc/trap"
)

// ErrInvalidOption indicates that an option was malformed or
// incomplete.
var ErrInvalidOption = errors.New("invalid sandbox option")

// Option configures a Sandbox.
type Option func(*config) error

type config struct {
	caller trap.Caller
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		caller: kernel.Native(),
		logger: slog.Default(),
	}
}

// WithCaller routes every trap through c instead of the native kernel.
func WithCaller(c trap.Caller) Option {
	return func(cfg *config) error {
		if c == nil {
			return fmt.Errorf("%w: nil caller", ErrInvalidOption)
		}
		cfg.caller = c
		return nil
	}
}

// WithLogger sets the logger for narrowing audit lines.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		cfg.logger = l
		return nil
	}
}

// Sandbox performs one-way privilege narrowing for the current
// process. The zero value is not usable; call New.
type Sandbox struct {
	cfg    config
	optErr error
}

// New creates a Sandbox configured by the provided options.
//
// Option errors are recorded and surfaced by the first operation on
// the Sandbox.
func New(opts ...Option) *Sandbox {
	var optErr error

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil && optErr == nil {
			optErr = err
		}
	}

	return &Sandbox{
		cfg:    cfg,
		optErr: optErr,
	}
}

// Pledge declares the operation categories the process retains now
// (promises) and across a future program replacement (execPromises).
// Both operands are opaque to this layer; an empty operand means no
// change. Requesting a superset of an earlier declaration is refused
// by the kernel, and that refusal is returned as-is.
func (s *Sandbox) Pledge(promises, execPromises string) error {
	if s.optErr != nil {
		return s.optErr
	}

	p, err := trap.NewString(promises)
	if err != nil {
		return err
	}
	ep, err := trap.NewString(execPromises)
	if err != nil {
		return err
	}

	if _, err := trap.Check(s.cfg.caller.Pledge(p, ep)); err != nil {
		return err
	}
	s.cfg.logger.Info("promises narrowed",
		"promises", promises, "exec_promises", execPromises)
	return nil
}

// Unveil adds one (path, permissions) entry to the process's
// path-visibility allow-list. Once any entry exists the kernel denies
// access to everything not covered. Sentinel operand combinations are
// kernel-defined and pass through uninterpreted; see UnveilBlock for
// the common one.
func (s *Sandbox) Unveil(path, permissions string) error {
	if s.optErr != nil {
		return s.optErr
	}

	p, err := trap.NewString(path)
	if err != nil {
		return err
	}
	perms, err := trap.NewString(permissions)
	if err != nil {
		return err
	}

	if _, err := trap.Check(s.cfg.caller.Unveil(p, perms)); err != nil {
		return err
	}
	s.cfg.logger.Info("path unveiled", "path", path, "permissions", permissions)
	return nil
}

// UnveilBlock locks the allow-list: no further entries can be added
// for the lifetime of the process.
func (s *Sandbox) UnveilBlock() error {
	return s.Unveil("", "")
}

// Chroot changes the process root directory.
func (s *Sandbox) Chroot(path string) error {
	return s.ChrootWithMountFlags(path, -1)
}

// ChrootWithMountFlags changes the process root directory, optionally
// combined with mount-namespace flags. A mountFlags value of -1 means
// no mount-flag change.
func (s *Sandbox) ChrootWithMountFlags(path string, mountFlags int) error {
	if s.optErr != nil {
		return s.optErr
	}
	if path == "" {
		return syscall.EFAULT
	}

	p, err := trap.NewString(path)
	if err != nil {
		return err
	}

	if _, err := trap.Check(s.cfg.caller.Chroot(p, mountFlags)); err != nil {
		return err
	}
	s.cfg.logger.Info("root changed", "path", path, "mount_flags", mountFlags)
	return nil
}

// SetUID changes the process user identity.
func (s *Sandbox) SetUID(uid uint32) error {
	if s.optErr != nil {
		return s.optErr
	}
	if _, err := trap.Check(s.cfg.caller.SetUID(uid)); err != nil {
		return err
	}
	s.cfg.logger.Info("uid dropped", "uid", uid)
	return nil
}

// SetGID changes the process group identity.
func (s *Sandbox) SetGID(gid uint32) error {
	if s.optErr != nil {
		return s.optErr
	}
	if _, err := trap.Check(s.cfg.caller.SetGID(gid)); err != nil {
		return err
	}
	s.cfg.logger.Info("gid dropped", "gid", gid)
	return nil
}
