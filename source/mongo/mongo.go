// Package mongo adapts a MongoDB collection to the feedcache source
// contract: Find for bulk loads, a change stream for invalidation events.
// The continuation position is the change stream's resume token.
package mongo

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jltournay/farmer-power-platform-sub003/source"
)

// Source serves one collection. The client and collection handle are owned
// by the caller; Source never closes them.
type Source struct {
	coll *driver.Collection
}

var _ source.Source = (*Source)(nil)

func New(coll *driver.Collection) *Source { return &Source{coll: coll} }

// Query runs Find with the strategy's filter (any valid Mongo filter
// document). nil loads the whole collection.
func (s *Source) Query(ctx context.Context, filter any) (source.Cursor, error) {
	if filter == nil {
		filter = bson.D{}
	}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &cursor{cur: cur}, nil
}

type cursor struct{ cur *driver.Cursor }

func (c *cursor) Next(ctx context.Context) bool   { return c.cur.Next(ctx) }
func (c *cursor) Record() []byte                  { return c.cur.Current }
func (c *cursor) Err() error                      { return c.cur.Err() }
func (c *cursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }

// Subscribe opens a change stream restricted to the four operation types the
// cache invalidates on. resumeFrom must be a resume token previously carried
// in Event.Position; nil subscribes from the present.
func (s *Source) Subscribe(ctx context.Context, resumeFrom []byte) (source.Stream, error) {
	pipeline := driver.Pipeline{bson.D{{Key: "$match", Value: bson.D{{
		Key: "operationType",
		Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}}},
	}}}}}

	opts := options.ChangeStream()
	if len(resumeFrom) > 0 {
		opts.SetResumeAfter(bson.Raw(resumeFrom))
	}

	cs, err := s.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	return &stream{cs: cs}, nil
}

type stream struct{ cs *driver.ChangeStream }

type changeDoc struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID any `bson:"_id"`
	} `bson:"documentKey"`
}

func (s *stream) Next(ctx context.Context) (source.Event, error) {
	if !s.cs.Next(ctx) {
		if err := ctx.Err(); err != nil {
			return source.Event{}, err
		}
		if err := s.cs.Err(); err != nil {
			return source.Event{}, err
		}
		return source.Event{}, io.EOF
	}

	var doc changeDoc
	if err := s.cs.Decode(&doc); err != nil {
		return source.Event{}, err
	}

	// copy the token; the driver reuses its buffers between Next calls
	tok := s.cs.ResumeToken()
	pos := make([]byte, len(tok))
	copy(pos, tok)

	return source.Event{
		Op:       source.Op(doc.OperationType),
		Key:      keyString(doc.DocumentKey.ID),
		Position: pos,
	}, nil
}

func (s *stream) Close(ctx context.Context) error { return s.cs.Close(ctx) }

// keyString renders documentKey._id as the snapshot key.
func keyString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}
