// Package collectioncache keeps fetched backend collections keyed by request
// URL so list screens do not refetch on every navigation.
package collectioncache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// defaultRefreshTimeout bounds a fetch that outlives its caller.
const defaultRefreshTimeout = 10 * time.Second

// FetchFunc loads the value for one key.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Entry is the result of a cache read.
type Entry[V any] struct {
	Data      V
	Err       error
	FetchedAt time.Time
	// Cached reports whether Data came from a stored entry without a fetch.
	Cached bool
}

// OK reports whether the entry holds data.
func (e Entry[V]) OK() bool {
	return e.Err == nil
}

type record[V any] struct {
	data      V
	fetchedAt time.Time
	fetch     FetchFunc[V]
}

// Cache stores one value per key. A key is fetched at most once until it is
// invalidated or its TTL lapses, and concurrent readers of the same key share
// one in-flight fetch. Failed fetches are never stored.
type Cache[V any] struct {
	mu             sync.Mutex
	records        map[string]record[V]
	generations    map[string]uint64
	group          singleflight.Group
	ttl            time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	wg             sync.WaitGroup
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	ttl            time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
}

// WithTTL expires entries after ttl. Zero keeps entries until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithRefreshTimeout bounds fetches that run detached from a request.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(o *options) { o.refreshTimeout = timeout }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	cfg := options{refreshTimeout: defaultRefreshTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.refreshTimeout <= 0 {
		cfg.refreshTimeout = defaultRefreshTimeout
	}
	return &Cache[V]{
		records:        make(map[string]record[V]),
		generations:    make(map[string]uint64),
		ttl:            cfg.ttl,
		refreshTimeout: cfg.refreshTimeout,
		now:            cfg.now,
	}
}

// Get returns the stored value for key or fetches it.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) Entry[V] {
	c.mu.Lock()
	rec, ok := c.records[key]
	if ok && !c.expired(rec) {
		c.mu.Unlock()
		return Entry[V]{Data: rec.data, FetchedAt: rec.fetchedAt, Cached: true}
	}
	gen := c.generations[key]
	c.mu.Unlock()

	result := <-c.group.DoChan(key, func() (any, error) {
		return c.load(ctx, key, gen, fetch)
	})
	if result.Err != nil {
		var zero V
		return Entry[V]{Data: zero, Err: result.Err}
	}
	stored := result.Val.(record[V])
	return Entry[V]{Data: stored.data, FetchedAt: stored.fetchedAt}
}

func (c *Cache[V]) load(ctx context.Context, key string, gen uint64, fetch FetchFunc[V]) (record[V], error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	data, err := fetch(fetchCtx)
	if err != nil {
		return record[V]{}, err
	}
	rec := record[V]{data: data, fetchedAt: c.now(), fetch: fetch}

	c.mu.Lock()
	if c.generations[key] == gen {
		c.records[key] = rec
	}
	c.mu.Unlock()
	return rec, nil
}

func (c *Cache[V]) expired(rec record[V]) bool {
	return c.ttl > 0 && c.now().Sub(rec.fetchedAt) >= c.ttl
}

// Invalidate discards the stored value for key.
//
// With a replacement the new value is stored immediately and nothing is
// fetched. Without one, a fresh fetch starts in the background using the
// last fetch function seen for key; readers arriving before it resolves join
// that fetch.
func (c *Cache[V]) Invalidate(ctx context.Context, key string, replacement ...V) {
	c.mu.Lock()
	c.generations[key]++
	gen := c.generations[key]
	c.group.Forget(key)
	if len(replacement) > 0 {
		c.records[key] = record[V]{
			data:      replacement[0],
			fetchedAt: c.now(),
			fetch:     c.records[key].fetch,
		}
		c.mu.Unlock()
		return
	}
	fetch := c.records[key].fetch
	delete(c.records, key)
	c.mu.Unlock()

	if fetch == nil {
		return
	}
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(ctx, key, gen, fetch)
	})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if result := <-ch; result.Err != nil {
			log.Warn().Err(result.Err).Str("key", key).Msg("collection refresh failed")
		}
	}()
}

// InvalidatePrefix discards every stored key starting with prefix without
// refetching.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.records {
		if strings.HasPrefix(key, prefix) {
			c.generations[key]++
			c.group.Forget(key)
			delete(c.records, key)
		}
	}
}

// Wait blocks until background refreshes finish.
func (c *Cache[V]) Wait() {
	c.wg.Wait()
}
