// Package query caches the results of API reads under hierarchical keys.
//
// A Fetch for a key returns the cached value while it is fresh, otherwise it
// runs the fetch function. Each key carries a generation counter: starting a
// Fetch or invalidating the key bumps it, and a response that completes under
// an older generation is dropped with ErrSuperseded instead of overwriting
// newer data.
package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrSuperseded is returned by Fetch when a newer Fetch or an Invalidate for
// the same key happened while the request was in flight.
var ErrSuperseded = errors.New("query superseded by a newer request")

// Status is the lifecycle state of one key.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Key identifies cached data, e.g. Key{"sites", siteID, "pages"}. Invalidate
// matches keys by element-wise prefix.
type Key []string

func (k Key) String() string { return strings.Join(k, "/") }

func (k Key) hasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key       Key
	value     any
	err       error
	status    Status
	gen       uint64
	stale     bool
	fetchedAt time.Time
}

// Cache holds query results. The zero value is not usable; call New.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	staleTime time.Duration
	now       func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long a successful result is served without
// refetching. Zero, the default, means results stay fresh until invalidated.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{entries: make(map[string]*entry), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) entry(key Key) *entry {
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: append(Key(nil), key...)}
		c.entries[k] = e
	}
	return e
}

func (c *Cache) fresh(e *entry) bool {
	if e.status != StatusSuccess || e.stale {
		return false
	}
	return c.staleTime == 0 || c.now().Sub(e.fetchedAt) < c.staleTime
}

// Fetch returns the cached value for key or loads it with fn.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	c.mu.Lock()
	e := c.entry(key)
	if c.fresh(e) {
		v, ok := e.value.(T)
		c.mu.Unlock()
		if ok {
			return v, nil
		}
		return zero, errors.New("query: cached value for " + key.String() + " has a different type")
	}
	e.gen++
	gen := e.gen
	e.status = StatusLoading
	c.mu.Unlock()

	v, err := fn(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.gen != gen {
		return zero, ErrSuperseded
	}
	if err != nil {
		e.status, e.err = StatusError, err
		return zero, err
	}
	e.status, e.err, e.value, e.stale = StatusSuccess, nil, v, false
	e.fetchedAt = c.now()
	return v, nil
}

// Get returns the last successful value for key without fetching.
func Get[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || e.value == nil {
		var zero T
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// Set stores v under key as a fresh result and drops any in-flight response
// for it. Use it for optimistic local edits.
func Set[T any](c *Cache, key Key, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	e.gen++
	e.status, e.err, e.value, e.stale = StatusSuccess, nil, v, false
	e.fetchedAt = c.now()
}

// State reports the status and last error of key.
func (c *Cache) State(key Key) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return StatusIdle, nil
	}
	return e.status, e.err
}

// Invalidate marks every key starting with prefix as stale and discards
// responses still in flight for them. Cached values remain readable through
// Get until the next Fetch replaces them. An empty prefix matches every key.
func (c *Cache) Invalidate(prefix ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.key.hasPrefix(prefix) {
			e.gen++
			e.stale = true
			if e.status == StatusLoading {
				e.status = StatusIdle
			}
			n++
		}
	}
	return n
}
