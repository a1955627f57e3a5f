package feedcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/jltournay/farmer-power-platform-sub003/resume"
	"github.com/jltournay/farmer-power-platform-sub003/source"
)

const (
	defaultTTL     = 5 * time.Minute
	defaultBackoff = time.Second
)

type cache[V any] struct {
	name    string
	src     source.Source
	strat   Strategy[V]
	log     Logger
	met     Metrics
	store   resume.Store
	clock   clockwork.Clock
	ttl     time.Duration
	backoff time.Duration
	dedup   bool

	group singleflight.Group

	// mu guards snap and loadedAt. Both are set and cleared together:
	// loadedAt is zero iff snap is nil. Never held across store I/O.
	mu       sync.RWMutex
	snap     map[string]V
	loadedAt time.Time

	// watchMu guards the watcher handle (cancel + done).
	watchMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}

	posMu sync.Mutex
	pos   []byte // last observed continuation position; survives reconnects
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("feedcache: name is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("feedcache: source is required")
	}
	if opts.Strategy == nil {
		return nil, fmt.Errorf("feedcache: strategy is required")
	}

	c := &cache[V]{
		name:  opts.Name,
		src:   opts.Source,
		strat: opts.Strategy,
		store: opts.Resume,
		dedup: !opts.DisableReloadDedup,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.met = coalesce[Metrics](opts.Metrics, NopMetrics{})
	c.ttl = coalesce[time.Duration](opts.TTL, defaultTTL)
	c.backoff = coalesce[time.Duration](opts.ReconnectBackoff, defaultBackoff)

	if opts.Clock != nil {
		c.clock = opts.Clock
	} else {
		c.clock = clockwork.NewRealClock()
	}

	return c, nil
}

func (c *cache[V]) GetAll(ctx context.Context) (map[string]V, error) {
	c.mu.RLock()
	snap, loadedAt := c.snap, c.loadedAt
	c.mu.RUnlock()

	if snap != nil {
		if age := c.clock.Since(loadedAt); age < c.ttl {
			c.met.Hit(c.name)
			c.met.ObserveAge(c.name, age.Seconds())
			return snap, nil
		}
	}

	if !c.dedup {
		return c.reload(ctx)
	}
	// collapse concurrent misses into one load; followers get the
	// leader's snapshot (or its error)
	v, err, _ := c.group.Do("reload", func() (any, error) {
		return c.reload(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]V), nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	all, err := c.GetAll(ctx)
	if err != nil {
		return zero, false, err
	}
	v, ok := all[key]
	if !ok {
		return zero, false, nil
	}
	return v, true, nil
}

// reload runs the full bulk load and swaps the snapshot in wholesale.
// On any query-level failure the previous snapshot state is left untouched.
func (c *cache[V]) reload(ctx context.Context) (map[string]V, error) {
	cur, err := c.src.Query(ctx, c.strat.Filter())
	if err != nil {
		return nil, &LoadError{Cache: c.name, Err: err}
	}
	defer func() { _ = cur.Close(ctx) }()

	next := make(map[string]V)
	skipped := 0
	for cur.Next(ctx) {
		v, err := c.strat.Parse(cur.Record())
		if err != nil {
			skipped++
			c.met.RecordSkipped(c.name)
			c.log.Warn("skipping malformed record", Fields{"cache": c.name, "err": err})
			continue
		}
		next[c.strat.Key(v)] = v // duplicate keys: last observed wins
	}
	if err := cur.Err(); err != nil {
		return nil, &LoadError{Cache: c.name, Err: err}
	}

	now := c.clock.Now()
	c.mu.Lock()
	c.snap = next
	c.loadedAt = now
	c.mu.Unlock()

	c.met.Miss(c.name)
	c.met.ObserveSize(c.name, len(next))
	c.log.Debug("snapshot loaded", Fields{"cache": c.name, "size": len(next), "skipped": skipped})
	return next, nil
}

func (c *cache[V]) Invalidate() {
	c.invalidate("manual", "all")
}

// invalidate drops the snapshot unconditionally. Idempotent: dropping an
// already-absent snapshot is safe, which is what makes at-least-once event
// delivery acceptable.
func (c *cache[V]) invalidate(reason, id string) {
	c.mu.Lock()
	c.snap = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()

	c.met.Invalidation(c.name, reason, id)
	c.met.ObserveSize(c.name, 0)
	c.log.Info("cache invalidated", Fields{"cache": c.name, "reason": reason, "id": id})
}

func (c *cache[V]) Health() Health {
	c.mu.RLock()
	snap, loadedAt := c.snap, c.loadedAt
	c.mu.RUnlock()

	var h Health
	if snap != nil {
		age := c.clock.Since(loadedAt)
		h.Size = len(snap)
		h.AgeSeconds = age.Seconds()
		h.CacheValid = age < c.ttl
	}
	h.WatcherActive = c.watcherActive()
	return h
}
