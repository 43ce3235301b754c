package tid

import (
	"fmt"

	"go.dw1.io/safemath"

	"go.dw1.io/proc/kernel"
	"go.dw1.io/proc/trap"
)

// Option configures a Cache.
type Option func(*config) error

type config struct {
	caller trap.Caller
}

func defaultConfig() config {
	return config{caller: kernel.Native()}
}

// WithCaller routes the identity trap through c instead of the native
// kernel.
func WithCaller(c trap.Caller) Option {
	return func(cfg *config) error {
		if c == nil {
			return fmt.Errorf("tid: nil caller")
		}
		cfg.caller = c
		return nil
	}
}

// Cache is a per-thread identity cache. The zero value is not usable;
// call New.
type Cache struct {
	cfg    config
	mapped []byte // non-nil when backed by a mapped page
	words  []int64
	slot   *int64
}

// New creates a Cache and acquires its backing page.
//
// New panics when the page cannot be established or an option is
// malformed: the cache cannot function without its mapping, and that
// is an environment error rather than a reportable failure.
func New(opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			panic(err)
		}
	}

	c := &Cache{cfg: cfg}
	c.acquire()
	return c
}

// ID returns the calling thread's identifier, fetching it through the
// identity trap only when the slot is unset. The slot is unset on the
// first query and again in any process that inherited the page across
// a duplication, because the page comes back zeroed there.
func (c *Cache) ID() int32 {
	if v := *c.slot; v != 0 {
		return int32(v)
	}

	rc, err := trap.Check(c.cfg.caller.ThreadID())
	if err != nil {
		panic(fmt.Sprintf("tid: identity trap failed: %v", err))
	}
	id, err := safemath.ConvertAny[int32](rc)
	if err != nil {
		panic(fmt.Sprintf("tid: identity %d out of range: %v", rc, err))
	}
	if id == 0 {
		// Zero is the unfetched sentinel; kernels hand out positive
		// thread identifiers.
		panic("tid: identity trap returned zero")
	}

	*c.slot = int64(id)
	return id
}

// Close releases the backing page. The Cache must not be used
// afterwards.
func (c *Cache) Close() {
	c.release()
	c.slot = nil
	c.words = nil
}
