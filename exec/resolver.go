package exec

import (
	"errors"
	"log/slog"
	"strings"
	"syscall"
)

// ExecSearch resolves an unqualified name against the search path and
// replaces the process image with the first candidate that executes.
//
// A name containing a path separator (or an empty name) is passed to
// Exec unresolved, even when no such path exists. Otherwise each
// directory of the search path is tried in order: a candidate failing
// with "no such entry" moves resolution along, any other failure is
// decisive and returned immediately. When every directory is exhausted
// the result is ENOENT.
func (r *Resolver) ExecSearch(name string, argv, envp []string) error {
	if r.optErr != nil {
		return r.optErr
	}

	if name == "" || strings.ContainsRune(name, '/') {
		return r.Exec(name, argv, envp)
	}

	for _, dir := range r.searchPath() {
		// Exactly one separator is inserted. A directory with a
		// trailing slash yields a doubled separator in the candidate,
		// which the path resolver tolerates.
		candidate := dir + "/" + name

		err := r.Exec(candidate, argv, envp)
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.ENOENT) {
			r.debugf("exec candidate failed", candidate, err)
			return err
		}
		r.debugf("exec candidate missing", candidate, err)
	}

	return syscall.ENOENT
}

// searchPath splits the PATH variable into an ordered directory list.
// The list is recomputed on every search; an unset or empty variable
// substitutes the default pair, and an empty component means the
// current directory.
func (r *Resolver) searchPath() []string {
	value := r.cfg.lookupEnv(PathEnv)
	if value == "" {
		value = r.cfg.defaultPath
	}

	dirs := strings.Split(value, ":")
	for i, dir := range dirs {
		if dir == "" {
			dirs[i] = "."
		}
	}
	return dirs
}

func (r *Resolver) debugf(msg, candidate string, err error) {
	attrs := make([]any, 0, 6)
	attrs = append(attrs, slog.String("candidate", candidate), slog.Any("err", err))
	if r.cfg.ids != nil {
		attrs = append(attrs, slog.Int("tid", int(r.cfg.ids.ID())))
	}
	r.cfg.logger.Debug(msg, attrs...)
}
