package codec

import "fmt"

// Limit wraps another codec to enforce a maximum allowed record size at
// Decode time. Encode is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: bound the damage of an oversized record in a shared
// collection; the record is skipped during a load rather than decoded.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner interface {
		Encode(V) ([]byte, error)
		Decode([]byte) (V, error)
	}
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// record for Decode. If the record length exceeds MaxDecode, Decode
	// returns an error without invoking Inner.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("record too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
