// Package wire frames continuation positions for durable storage.
//
// A persisted position is fed back to a change-feed driver on resume, so a
// corrupt or foreign value must be detected at load time rather than handed
// to the driver. The envelope is strict: unknown magic, version, kind, or
// trailing bytes all decode as ErrCorrupt.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version      byte = 1
	kindPosition byte = 1
)

var (
	ErrCorrupt = errors.New("feedcache: corrupt position envelope")
	magic4     = [...]byte{'F', 'D', 'C', 'H'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Position: magic(4) | ver(1) | kind(1=position) | plen(u32 be) | payload(plen)
func EncodePosition(pos []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 4 + len(pos))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindPosition)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(pos)))
	buf.Write(u4[:])

	buf.Write(pos)
	return buf.Bytes()
}

func DecodePosition(b []byte) ([]byte, error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindPosition {
		return nil, ErrCorrupt
	}

	off := 6

	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen != len(b)-off { // strict: no trailing bytes
		return nil, ErrCorrupt
	}

	return b[off : off+plen], nil
}
