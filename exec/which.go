package exec

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"go.dw1.io/fastcache"
)

// ErrNotFound indicates that a command name resolved to no executable
// candidate in the search path.
var ErrNotFound = errors.New("executable file not found in search path")

const whichCacheSize = 1_024

type whichCache struct {
	once  sync.Once
	cache *fastcache.Cache[string, string]
}

func (w *whichCache) get() *fastcache.Cache[string, string] {
	w.once.Do(func() {
		w.cache = fastcache.New[string, string](whichCacheSize)
	})
	return w.cache
}

// Which resolves name to the path the searching replacement would
// execute, without replacing anything: the same search-path walk, but
// with a file-mode check in place of the execute trap.
//
// Successful resolutions are cached per (PATH value, name) pair; the
// search path itself is still recomputed on every miss, and negative
// results are never cached.
func (r *Resolver) Which(name string) (string, error) {
	if r.optErr != nil {
		return "", r.optErr
	}

	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	if strings.ContainsRune(name, '/') {
		if err := checkExecutable(name); err != nil {
			return "", err
		}
		return name, nil
	}

	key := r.cfg.lookupEnv(PathEnv) + "\x00" + name
	cache := r.which.get()
	if hit, ok := cache.Get(key); ok {
		return hit, nil
	}

	for _, dir := range r.searchPath() {
		candidate := dir + "/" + name
		if err := checkExecutable(candidate); err != nil {
			continue
		}
		cache.Set(key, candidate)
		return candidate, nil
	}

	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode()
	if mode.IsDir() {
		return syscall.EISDIR
	}
	if !mode.IsRegular() || mode&0o111 == 0 {
		return syscall.EACCES
	}
	return nil
}
