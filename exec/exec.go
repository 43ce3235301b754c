package exec

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.dw1.io/proc/kernel"
	"go.dw1.io/proc/tid"
	"go.dw1.io/proc/trap"
)

// DefaultPath is the directory list used when the PATH variable is
// unset or empty.
const DefaultPath = "/bin:/usr/bin"

// PathEnv is the environment variable consulted by the searching
// operations.
const PathEnv = "PATH"

// ErrInvalidOption indicates that an option was malformed or
// incomplete.
//
// It can be wrapped by option validation failures.
var ErrInvalidOption = errors.New("invalid resolver option")

// Option configures a Resolver.
//
// Returning an error records the first failure and surfaces it from
// the first operation on the Resolver.
type Option func(*config) error

type config struct {
	caller      trap.Caller
	logger      *slog.Logger
	lookupEnv   func(string) string
	environ     func() []string
	defaultPath string
	ids         *tid.Cache
}

func defaultConfig() config {
	return config{
		caller:      kernel.Native(),
		logger:      slog.Default(),
		lookupEnv:   os.Getenv,
		environ:     os.Environ,
		defaultPath: DefaultPath,
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

// WithLogger sets the logger for per-candidate diagnostics. Diagnostics
// are emitted at Debug level and never alter the returned error.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		cfg.logger = l
		return nil
	}
}

// WithLookupEnv overrides how the PATH variable is read.
func WithLookupEnv(fn func(string) string) Option {
	return func(cfg *config) error {
		if fn == nil {
			return fmt.Errorf("%w: nil lookup function", ErrInvalidOption)
		}
		cfg.lookupEnv = fn
		return nil
	}
}

// WithEnviron overrides the ambient environment used by Command and
// CommandPath.
func WithEnviron(fn func() []string) Option {
	return func(cfg *config) error {
		if fn == nil {
			return fmt.Errorf("%w: nil environ function", ErrInvalidOption)
		}
		cfg.environ = fn
		return nil
	}
}

// WithDefaultPath replaces the built-in fallback directory list.
func WithDefaultPath(path string) Option {
	return func(cfg *config) error {
		if path == "" {
			return fmt.Errorf("%w: empty default path", ErrInvalidOption)
		}
		cfg.defaultPath = path
		return nil
	}
}

// WithIdentityCache tags per-candidate diagnostics with the calling
// thread's identity from c.
func WithIdentityCache(c *tid.Cache) Option {
	return func(cfg *config) error {
		if c == nil {
			return fmt.Errorf("%w: nil identity cache", ErrInvalidOption)
		}
		cfg.ids = c
		return nil
	}
}

// Resolver performs program replacement and command-name resolution.
// The zero value is not usable; call New.
type Resolver struct {
	cfg    config
	optErr error
	which  whichCache
}

// New creates a Resolver configured by the provided options.
//
// Option errors are recorded and surfaced by the first operation on
// the Resolver.
func New(opts ...Option) *Resolver {
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

	return &Resolver{
		cfg:    cfg,
		optErr: optErr,
	}
}

// Exec replaces the calling process image with the program at path.
//
// argv and envp are marshalled as-is; no search happens. Against a
// real kernel Exec does not return on success, so any return value is
// a failure carrying the decisive code.
func (r *Resolver) Exec(path string, argv, envp []string) error {
	if r.optErr != nil {
		return r.optErr
	}

	p, err := trap.NewString(path)
	if err != nil {
		return err
	}
	av, err := trap.NewVector(argv)
	if err != nil {
		return err
	}
	ev, err := trap.NewVector(envp)
	if err != nil {
		return err
	}

	_, err = trap.Check(r.cfg.caller.Exec(p, av, ev))
	return err
}

// Command collects name and args into an argument vector and performs
// a searching replacement with the ambient environment. The execl-style
// variant without search is CommandPath.
func (r *Resolver) Command(name string, args ...string) error {
	if r.optErr != nil {
		return r.optErr
	}
	return r.ExecSearch(name, buildArgv(name, args), r.cfg.environ())
}

// CommandPath collects path and args into an argument vector and
// replaces the process image with the ambient environment, without
// search.
func (r *Resolver) CommandPath(path string, args ...string) error {
	if r.optErr != nil {
		return r.optErr
	}
	return r.Exec(path, buildArgv(path, args), r.cfg.environ())
}

func buildArgv(name string, args []string) []string {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	argv = append(argv, args...)
	return argv
}
