package feedcache

import (
	"context"
	"errors"
	"io"

	"github.com/jltournay/farmer-power-platform-sub003/source"
)

// Start launches the background change-feed watcher. At most one watcher
// task exists per cache instance; calling Start while one is running is a
// warned no-op.
func (c *cache[V]) Start() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if c.done != nil {
		select {
		case <-c.done:
			// previous task finished on its own (feed ended); release its
			// context before replacing the handle
			c.cancel()
		default:
			c.log.Warn("watcher already running", Fields{"cache": c.name})
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		c.watch(ctx)
	}()
}

// Stop cancels the watcher task and waits for it to wind down, bounded by
// ctx. Cancellation is a clean shutdown inside the watcher, never logged or
// surfaced as an error. Safe to call with no watcher running.
func (c *cache[V]) Stop(ctx context.Context) error {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if c.done == nil {
		return nil
	}
	c.cancel()
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.cancel = nil
	c.done = nil
	return nil
}

// watcherActive reports whether a watcher handle exists and its task has not
// finished.
func (c *cache[V]) watcherActive() bool {
	c.watchMu.Lock()
	done := c.done
	c.watchMu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// watch is the reconnect state machine: subscribe to the change feed, stream
// events into the invalidator, and on any fault back off and resubscribe
// from the last observed continuation position. Runs until ctx is canceled
// by Stop or the feed ends cleanly. Faults never propagate to the request
// path; the loop retries indefinitely.
func (c *cache[V]) watch(ctx context.Context) {
	c.loadStoredPosition(ctx)

	for ctx.Err() == nil {
		st, err := c.src.Subscribe(ctx, c.position())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("change feed subscribe failed", Fields{
				"cache": c.name, "err": err, "backoff": c.backoff.String(),
			})
			c.met.StreamReconnect(c.name)
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		err = c.stream(ctx, st)
		_ = st.Close(context.WithoutCancel(ctx))

		switch {
		case ctx.Err() != nil:
			// canceled by Stop
			return
		case errors.Is(err, io.EOF):
			c.log.Info("change feed ended", Fields{"cache": c.name})
			return
		default:
			c.log.Warn("change feed failed", Fields{
				"cache": c.name, "err": err, "backoff": c.backoff.String(),
			})
			c.met.StreamReconnect(c.name)
			if !c.sleep(ctx) {
				return
			}
		}
	}
}

// stream consumes events in delivery order until the feed fails, ends, or
// ctx is canceled. The continuation position advances only after the event
// has been fed to the invalidator, so a reconnect may redeliver the last
// event - harmless, invalidation is idempotent.
func (c *cache[V]) stream(ctx context.Context, st source.Stream) error {
	for {
		ev, err := st.Next(ctx)
		if err != nil {
			return err
		}
		c.invalidate("stream:"+string(ev.Op), ev.Key)
		c.advancePosition(ctx, ev.Position)
	}
}

// sleep waits one backoff interval; false means ctx was canceled.
func (c *cache[V]) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(c.backoff):
		return true
	}
}

func (c *cache[V]) position() []byte {
	c.posMu.Lock()
	defer c.posMu.Unlock()
	return c.pos
}

// advancePosition records the continuation position of a fully processed
// event and persists it best-effort when a resume store is configured. A
// save failure costs at worst some event replay after a restart.
func (c *cache[V]) advancePosition(ctx context.Context, pos []byte) {
	if len(pos) == 0 {
		return
	}
	c.posMu.Lock()
	c.pos = pos
	c.posMu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, pos); err != nil {
		c.log.Warn("saving continuation position failed", Fields{"cache": c.name, "err": err})
	}
}

// loadStoredPosition seeds the in-memory position from the resume store once
// at task start. The in-memory position, once observed, always wins. An
// unusable stored position means subscribing from the present; the TTL
// fallback covers whatever the gap missed.
func (c *cache[V]) loadStoredPosition(ctx context.Context) {
	if c.store == nil || c.position() != nil {
		return
	}
	pos, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn("stored continuation position unusable, subscribing from present", Fields{
			"cache": c.name, "err": err,
		})
		return
	}
	if pos == nil {
		return
	}
	c.posMu.Lock()
	c.pos = pos
	c.posMu.Unlock()
}
