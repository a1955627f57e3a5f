package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	feedcache "github.com/jltournay/farmer-power-platform-sub003"
)

// DocStrategy is a feedcache.Strategy for BSON documents: each raw record
// unmarshals into V, keys come from KeyFunc, and Match is handed to Find as
// the bulk-load filter (nil loads the whole collection).
type DocStrategy[V any] struct {
	KeyFunc func(V) string
	Match   any
}

var _ feedcache.Strategy[bson.M] = DocStrategy[bson.M]{}

func (s DocStrategy[V]) Key(v V) string { return s.KeyFunc(v) }

func (s DocStrategy[V]) Parse(raw []byte) (V, error) {
	var v V
	err := bson.Unmarshal(raw, &v)
	return v, err
}

func (s DocStrategy[V]) Filter() any { return s.Match }
