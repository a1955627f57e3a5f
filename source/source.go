// Package source defines the document-store abstraction used by feedcache.
//
// A Source covers the two ways the cache touches its backing store: bulk
// queries for warm loads, and a change-notification feed for invalidation.
// Implementations MUST deliver feed events in store order on a single Stream,
// and every event MUST carry the continuation position that resumes the feed
// from just after that event. Reprocessing an event after a reconnect is
// acceptable (the cache invalidates idempotently); silently skipping events
// is not, beyond what the caller's TTL fallback already tolerates.
package source

import "context"

// Op is the change-feed operation type as reported by the store.
type Op string

const (
	OpInsert  Op = "insert"
	OpUpdate  Op = "update"
	OpReplace Op = "replace"
	OpDelete  Op = "delete"
)

// Event is one change-feed notification.
type Event struct {
	// Op is the operation observed on the collection.
	Op Op
	// Key identifies the affected document.
	Key string
	// Position is the opaque continuation position observed after this
	// event. Passing it as resumeFrom to Subscribe resumes the feed without
	// redelivering history up to and including this event.
	Position []byte
}

// Source is a document collection with a change feed.
// Must be safe for concurrent use: the cache queries from request goroutines
// while one background goroutine consumes the feed.
type Source interface {
	// Query starts a bulk read of the records matching filter. The filter is
	// driver-specific and opaque to the cache (it comes straight from the
	// caller's Strategy); nil means "all records".
	Query(ctx context.Context, filter any) (Cursor, error)

	// Subscribe opens the change feed, restricted to insert, update, replace
	// and delete operations. A non-nil resumeFrom resumes after a previously
	// observed Position; nil subscribes from the present.
	Subscribe(ctx context.Context, resumeFrom []byte) (Stream, error)
}

// Cursor iterates the raw records of one bulk query, mirroring the shape of
// a driver cursor: Next advances and reports whether a record is available,
// Record returns the current raw bytes, and Err reports what (other than
// exhaustion) stopped iteration.
//
// Record's bytes are only valid until the next call to Next.
type Cursor interface {
	Next(ctx context.Context) bool
	Record() []byte
	Err() error
	Close(ctx context.Context) error
}

// Stream delivers change-feed events in order. Next blocks until an event
// arrives, the stream fails, or ctx is done; cancellation surfaces as ctx's
// error. A feed that ends cleanly (the store closed it without fault)
// returns io.EOF.
type Stream interface {
	Next(ctx context.Context) (Event, error)
	Close(ctx context.Context) error
}
