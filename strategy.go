package feedcache

import (
	c "github.com/jltournay/farmer-power-platform-sub003/codec"
)

// Strategy supplies the per-entity hooks the cache cannot know itself:
// how to key a parsed item, how to parse a raw record, and which bulk-load
// predicate to hand the source. One implementation per cached entity type.
type Strategy[V any] interface {
	// Key extracts the snapshot key of a parsed item.
	Key(v V) string
	// Parse turns one raw record into an item. A returned error skips the
	// record during a load; it never aborts the load.
	Parse(raw []byte) (V, error)
	// Filter returns the driver-specific bulk-load predicate passed to
	// Source.Query. nil loads the whole collection.
	Filter() any
}

// StrategyFuncs adapts plain functions to Strategy. FilterFunc may be nil
// (loads everything); KeyFunc and ParseFunc must be set.
type StrategyFuncs[V any] struct {
	KeyFunc    func(V) string
	ParseFunc  func([]byte) (V, error)
	FilterFunc func() any
}

var _ Strategy[int] = StrategyFuncs[int]{}

func (s StrategyFuncs[V]) Key(v V) string              { return s.KeyFunc(v) }
func (s StrategyFuncs[V]) Parse(raw []byte) (V, error) { return s.ParseFunc(raw) }
func (s StrategyFuncs[V]) Filter() any {
	if s.FilterFunc == nil {
		return nil
	}
	return s.FilterFunc()
}

// CodecStrategy builds a Strategy from a value codec and a key function, for
// sources whose records are opaque bytes (a Redis hash, for instance). Match
// is passed through to the source as the bulk-load filter; nil loads all.
type CodecStrategy[V any] struct {
	Codec   c.Codec[V]
	KeyFunc func(V) string
	Match   any
}

var _ Strategy[int] = CodecStrategy[int]{}

func (s CodecStrategy[V]) Key(v V) string              { return s.KeyFunc(v) }
func (s CodecStrategy[V]) Parse(raw []byte) (V, error) { return s.Codec.Decode(raw) }
func (s CodecStrategy[V]) Filter() any                 { return s.Match }
