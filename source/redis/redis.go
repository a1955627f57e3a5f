// Package redis adapts a Redis deployment to the feedcache source contract:
// records live in one hash (HSCAN for bulk loads), change events in one
// stream (blocking XREAD for the feed). The continuation position is the
// last delivered stream entry ID.
//
// Stream entries must carry two fields, "op" (insert|update|replace|delete)
// and "key" (the mutated hash field). Appending one entry per mutation is
// the writing side's responsibility; entries with other ops are skipped.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jltournay/farmer-power-platform-sub003/source"
)

const defaultScanCount = 512

// Config wires a Source to one hash/stream pair on a shared client.
type Config struct {
	// Required
	Client goredis.UniversalClient
	Hash   string // hash key holding the records (field => raw record)
	Stream string // stream key carrying change events

	ScanCount int64 // HSCAN page size; 0 => 512
}

// Source serves one record hash and its companion change stream. The client
// is owned by the caller; Source never closes it.
type Source struct {
	rdb    goredis.UniversalClient
	hash   string
	stream string
	count  int64
}

var _ source.Source = (*Source)(nil)

func New(cfg Config) (*Source, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("redis source: client is required")
	}
	if cfg.Hash == "" {
		return nil, fmt.Errorf("redis source: hash key is required")
	}
	if cfg.Stream == "" {
		return nil, fmt.Errorf("redis source: stream key is required")
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Source{rdb: cfg.Client, hash: cfg.Hash, stream: cfg.Stream, count: count}, nil
}

// Query pages over the record hash. The filter, when set, must be an HSCAN
// MATCH glob pattern string applied to hash fields; nil or "" loads all.
func (s *Source) Query(_ context.Context, filter any) (source.Cursor, error) {
	match := "*"
	switch f := filter.(type) {
	case nil:
	case string:
		if f != "" {
			match = f
		}
	default:
		return nil, fmt.Errorf("redis source: filter must be a MATCH pattern string, got %T", filter)
	}
	return &cursor{s: s, match: match}, nil
}

type cursor struct {
	s     *Source
	match string

	scan uint64   // HSCAN cursor; 0 after the final page
	vals []string // record payloads of the current page
	i    int
	rec  []byte
	done bool
	err  error
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	for {
		if c.i < len(c.vals) {
			c.rec = []byte(c.vals[c.i])
			c.i++
			return true
		}
		if c.done {
			return false
		}

		// HSCAN returns field/value pairs flattened; only the values are
		// records, the fields are the store's own keying.
		pairs, next, err := c.s.rdb.HScan(ctx, c.s.hash, c.scan, c.match, c.s.count).Result()
		if err != nil {
			c.err = err
			return false
		}
		c.scan = next
		c.done = next == 0
		c.vals = c.vals[:0]
		for i := 1; i < len(pairs); i += 2 {
			c.vals = append(c.vals, pairs[i])
		}
		c.i = 0
	}
}

func (c *cursor) Record() []byte              { return c.rec }
func (c *cursor) Err() error                  { return c.err }
func (c *cursor) Close(context.Context) error { return nil }

// Subscribe tails the change stream. resumeFrom must be an entry ID
// previously carried in Event.Position; nil subscribes from the present.
func (s *Source) Subscribe(_ context.Context, resumeFrom []byte) (source.Stream, error) {
	last := "$"
	if len(resumeFrom) > 0 {
		last = string(resumeFrom)
	}
	return &stream{s: s, last: last}, nil
}

type stream struct {
	s    *Source
	last string
}

// Next blocks on XREAD until an entry arrives or ctx is canceled. Entries
// with an unrecognized op or a missing key field advance the position but
// are not delivered.
func (st *stream) Next(ctx context.Context) (source.Event, error) {
	for {
		res, err := st.s.rdb.XRead(ctx, &goredis.XReadArgs{
			Streams: []string{st.s.stream, st.last},
			Count:   1,
			Block:   0, // block until an entry arrives
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return source.Event{}, ctx.Err()
			}
			return source.Event{}, err
		}

		for _, msg := range res[0].Messages {
			st.last = msg.ID
			op, _ := msg.Values["op"].(string)
			key, _ := msg.Values["key"].(string)
			switch source.Op(op) {
			case source.OpInsert, source.OpUpdate, source.OpReplace, source.OpDelete:
				return source.Event{Op: source.Op(op), Key: key, Position: []byte(msg.ID)}, nil
			}
		}
	}
}

// Close is a no-op: the client is shared and owned by the caller.
func (st *stream) Close(context.Context) error { return nil }
