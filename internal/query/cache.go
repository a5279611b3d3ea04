// Package query provides a keyed, time-bounded cache for remote reads with
// de-duplication of concurrent requests for the same key.
package query

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultStaleTime is how long a fetched value is served without refetching.
	DefaultStaleTime = time.Hour
	// DefaultGCTime is how long an unobserved, stale entry survives before Prune drops it.
	DefaultGCTime = 5 * time.Minute
)

// FetchFunc performs the underlying read for one key.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// State is a snapshot of one cache entry.
type State[V any] struct {
	Data      V
	HasData   bool
	IsLoading bool
	IsError   bool
	Err       error
	UpdatedAt time.Time
}

// Options configures a Cache.
type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration
	// OnError is called once per failed underlying fetch.
	OnError func(Key, error)
	// Now overrides the clock, for tests.
	Now     func() time.Time
	Verbose bool
}

type entry[V any] struct {
	data       V
	hasData    bool
	loading    bool
	err        error
	updatedAt  time.Time
	lastAccess time.Time
}

func (e *entry[V]) fresh(now time.Time, staleTime time.Duration) bool {
	return e.hasData && !e.updatedAt.IsZero() && now.Sub(e.updatedAt) < staleTime
}

func (e *entry[V]) state() State[V] {
	return State[V]{
		Data:      e.data,
		HasData:   e.hasData,
		IsLoading: e.loading,
		IsError:   e.err != nil,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}

// Cache holds independent entries per Key. Entries never invalidate each other.
type Cache[V any] struct {
	mu        sync.Mutex
	entries   map[Key]*entry[V]
	group     singleflight.Group
	staleTime time.Duration
	gcTime    time.Duration
	onError   func(Key, error)
	now       func() time.Time
	verbose   bool
	fetches   atomic.Int64
}

// New creates a cache; nil options use the defaults.
func New[V any](opts *Options) *Cache[V] {
	if opts == nil {
		opts = &Options{}
	}
	c := &Cache[V]{
		entries:   make(map[Key]*entry[V]),
		staleTime: opts.StaleTime,
		gcTime:    opts.GCTime,
		onError:   opts.OnError,
		now:       opts.Now,
		verbose:   opts.Verbose,
	}
	if c.staleTime <= 0 {
		c.staleTime = DefaultStaleTime
	}
	if c.gcTime <= 0 {
		c.gcTime = DefaultGCTime
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Query returns the entry for key, fetching it first when it is missing or stale.
// A disabled query never fetches and returns whatever is cached.
// Concurrent callers for the same key share one underlying fetch.
func (c *Cache[V]) Query(ctx context.Context, key Key, fetch FetchFunc[V], enabled bool) State[V] {
	if !enabled {
		return c.Peek(key)
	}
	if st, ok := c.begin(key); !ok {
		return st
	}
	return c.await(ctx, key, fetch)
}

// Prefetch starts a fetch in the background when the entry is missing or stale.
// Peek reports IsLoading until it completes.
func (c *Cache[V]) Prefetch(key Key, fetch FetchFunc[V]) {
	if _, ok := c.begin(key); !ok {
		return
	}
	go c.await(context.Background(), key, fetch)
}

// Peek returns the current entry without fetching.
func (c *Cache[V]) Peek(key Key) State[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return State[V]{}
	}
	e.lastAccess = c.now()
	return e.state()
}

// Invalidate marks an entry stale so the next Query refetches it.
func (c *Cache[V]) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.updatedAt = time.Time{}
	}
}

// Prune drops stale entries nobody has looked at for GCTime and returns how many were removed.
func (c *Cache[V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.loading || e.fresh(now, c.staleTime) {
			continue
		}
		if now.Sub(e.lastAccess) >= c.gcTime {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries held.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetches returns how many underlying fetches have run.
func (c *Cache[V]) Fetches() int64 {
	return c.fetches.Load()
}

// begin marks the entry loading and reports whether a fetch is needed.
func (c *Cache[V]) begin(key Key) (State[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
	}
	e.lastAccess = now
	if e.fresh(now, c.staleTime) {
		return e.state(), false
	}
	e.loading = true
	return e.state(), true
}

// await joins (or starts) the shared fetch for key and returns the resulting state.
// The shared fetch is detached from the caller's cancellation: a caller that gives up
// leaves the response to populate the entry for whoever reads it next.
func (c *Cache[V]) await(ctx context.Context, key Key, fetch FetchFunc[V]) State[V] {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return nil, c.run(fetchCtx, key, fetch)
	})

	select {
	case <-ch:
		return c.Peek(key)
	case <-ctx.Done():
		st := c.Peek(key)
		if !st.HasData {
			st.Err = ctx.Err()
		}
		return st
	}
}

// run performs one underlying fetch and records the outcome.
func (c *Cache[V]) run(ctx context.Context, key Key, fetch FetchFunc[V]) (err error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{loading: true}
		c.entries[key] = e
	}
	// A caller that raced past begin while the previous fetch finished joins the result.
	if e.fresh(c.now(), c.staleTime) {
		e.loading = false
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.fetches.Add(1)
	if c.verbose {
		log.Printf("[query] fetching %s", key)
	}

	var value V
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("query %s: fetch panicked: %v", key, r)
			}
		}()
		value, err = fetch(ctx)
	}()

	c.mu.Lock()
	e, ok = c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
	}
	e.loading = false
	if err != nil {
		e.err = err
	} else {
		e.data = value
		e.hasData = true
		e.err = nil
		e.updatedAt = c.now()
	}
	c.mu.Unlock()

	if err != nil {
		if c.verbose {
			log.Printf("[query] %s failed: %v", key, err)
		}
		if c.onError != nil {
			c.onError(key, err)
		}
	}
	return err
}

// Batch aggregates the entries of a multi-key query.
type Batch[V any] struct {
	States []State[V]
	// Data holds the values of entries that have data, in key order.
	Data []V
	// IsLoading is true while any entry is loading.
	IsLoading bool
}

func newBatch[V any](states []State[V]) Batch[V] {
	b := Batch[V]{States: states, Data: make([]V, 0, len(states))}
	for _, st := range states {
		b.IsLoading = b.IsLoading || st.IsLoading
		if st.HasData {
			b.Data = append(b.Data, st.Data)
		}
	}
	return b
}

// QueryAll queries every key in parallel, one entry per key, and waits for all of them.
// enabled may be nil, meaning every key is enabled.
func (c *Cache[V]) QueryAll(ctx context.Context, keys []Key, fetchFor func(Key) FetchFunc[V], enabled func(Key) bool) Batch[V] {
	states := make([]State[V], len(keys))

	var g errgroup.Group
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			on := enabled == nil || enabled(key)
			states[i] = c.Query(ctx, key, fetchFor(key), on)
			return nil
		})
	}
	_ = g.Wait()

	return newBatch(states)
}

// PrefetchAll starts background fetches for every enabled key and returns the current batch
// without waiting, so IsLoading reflects fetches still in flight.
func (c *Cache[V]) PrefetchAll(keys []Key, fetchFor func(Key) FetchFunc[V], enabled func(Key) bool) Batch[V] {
	for _, key := range keys {
		if enabled == nil || enabled(key) {
			c.Prefetch(key, fetchFor(key))
		}
	}
	return c.PeekAll(keys)
}

// PeekAll returns the current batch for keys without fetching.
func (c *Cache[V]) PeekAll(keys []Key) Batch[V] {
	states := make([]State[V], len(keys))
	for i, key := range keys {
		states[i] = c.Peek(key)
	}
	return newBatch(states)
}
