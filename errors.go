package feedcache

import (
	"fmt"
)

// LoadError wraps a query/transport failure during a full snapshot load.
// The snapshot is left as it was; the next read retries. Per-record parse
// failures are not LoadErrors - those are skipped, not propagated.
type LoadError struct {
	Cache string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("feedcache %q: load failed: %v", e.Cache, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
