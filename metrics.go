package feedcache

// Metrics receives cache observability callbacks.
// Implementations MUST be cheap and non-blocking - the cache calls them on
// hot paths. Wrap a slow sink in metrics/async. Every callback carries the
// instance's Name so multiple caches share one sink without collisions.
type Metrics interface {
	// GetAll served from the current snapshot.
	Hit(cache string)

	// GetAll had to reload from the store.
	Miss(cache string)

	// Snapshot dropped.
	// reason ∈ {"manual", "stream:insert", "stream:update", "stream:replace", "stream:delete"}
	// id is the affected key, or "all" for manual invalidation.
	Invalidation(cache, reason, id string)

	// A record failed parsing during a load and was skipped.
	RecordSkipped(cache string)

	// The watcher lost the change feed and is backing off before resubscribing.
	StreamReconnect(cache string)

	// Snapshot entry count after a load; 0 after an invalidation.
	ObserveSize(cache string, n int)

	// Snapshot age at serve time, in seconds.
	ObserveAge(cache string, seconds float64)
}

// NopMetrics is the default no-op
type NopMetrics struct{}

func (NopMetrics) Hit(string)                          {}
func (NopMetrics) Miss(string)                         {}
func (NopMetrics) Invalidation(string, string, string) {}
func (NopMetrics) RecordSkipped(string)                {}
func (NopMetrics) StreamReconnect(string)              {}
func (NopMetrics) ObserveSize(string, int)             {}
func (NopMetrics) ObserveAge(string, float64)          {}
