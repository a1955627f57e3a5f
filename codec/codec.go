// Package codec provides (de)serializers for cached value types.
//
// Sources that deliver opaque byte records (a Redis hash, for instance) need
// a Codec on the read side to turn each raw record into a value; the write
// side of the same Codec is what the owning service uses to put records into
// the store in the first place. Pick one codec per collection and keep it
// stable: records written with one codec are skipped as malformed by another.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
