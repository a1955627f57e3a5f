package feedcache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jltournay/farmer-power-platform-sub003/resume"
	"github.com/jltournay/farmer-power-platform-sub003/source"
)

// Cache is the read-through cache for one collection of entities keyed by
// string ids. V is the caller's parsed value type.
type Cache[V any] interface {
	// GetAll returns the current snapshot, reloading from the store first
	// when the snapshot is absent or older than the TTL. The returned map is
	// the live snapshot and MUST be treated as read-only by callers.
	GetAll(ctx context.Context) (map[string]V, error)

	// Get is GetAll plus a key lookup. A missing key is (zero, false, nil),
	// not an error.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Invalidate drops the snapshot unconditionally. The next read reloads.
	Invalidate()

	// Start launches the background change-feed watcher. Idempotent: a
	// second Start while the watcher runs is a warned no-op.
	Start()
	// Stop cancels the watcher and waits for it to wind down, bounded by ctx.
	Stop(ctx context.Context) error

	// Health reports a point-in-time view for liveness/readiness surfaces.
	Health() Health
}

// Health is a point-in-time cache health snapshot.
type Health struct {
	Size          int     `json:"size"`
	AgeSeconds    float64 `json:"age_seconds"`
	WatcherActive bool    `json:"watcher_active"`
	CacheValid    bool    `json:"cache_valid"`
}

// Options tune the behavior of one cache instance.
// Only Name, Source and Strategy are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Name     string // metric/log label, e.g. "farmer", "agent_config"
	Source   source.Source
	Strategy Strategy[V]

	Logger           Logger          // nil => NopLogger
	Metrics          Metrics         // nil => NopMetrics
	TTL              time.Duration   // snapshot validity window; 0 => 5m
	ReconnectBackoff time.Duration   // sleep between watcher retries; 0 => 1s
	Resume           resume.Store    // nil => continuation position kept in memory only
	Clock            clockwork.Clock // nil => real clock; fake in tests

	// DisableReloadDedup restores the permissive behavior where concurrent
	// callers hitting a cold/expired cache each issue their own reload.
	// Default false: concurrent misses share a single in-flight load.
	DisableReloadDedup bool
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
