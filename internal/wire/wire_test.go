package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func mustDecode(t *testing.T, b []byte) []byte {
	t.Helper()
	p, err := DecodePosition(b)
	if err != nil {
		t.Fatalf("DecodePosition error: %v", err)
	}
	return p
}

func TestPositionRTEmptyAndNonEmpty(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("825F1A2B3C000000012B0229296E"),
		{0, 1, 2, 3, 4, 0xFF},
	}
	for _, pos := range cases {
		enc := EncodePosition(pos)
		got := mustDecode(t, enc)
		if !bytes.Equal(got, pos) {
			t.Fatalf("position mismatch: got %x want %x", got, pos)
		}
	}
}

func TestPositionRejectsTrailingBytes(t *testing.T) {
	enc := EncodePosition([]byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, err := DecodePosition(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestPositionCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodePosition([]byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := DecodePosition(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := DecodePosition(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// wrong kind
	badKind := append([]byte(nil), enc...)
	badKind[5] = kindPosition + 1
	if _, err := DecodePosition(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	// plen too large (announce more than available)
	tooLong := append([]byte(nil), enc...)
	// plen is at offset 6..9 (4 magic +1 ver +1 kind)
	binary.BigEndian.PutUint32(tooLong[6:10], uint32(len("abc")+1))
	if _, err := DecodePosition(tooLong); err == nil {
		t.Fatalf("expected error on plen beyond buffer")
	}

	// truncated buffer
	trunc := enc[:len(enc)-1]
	if _, err := DecodePosition(trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}

	// raw bytes that never went through EncodePosition
	if _, err := DecodePosition([]byte("not-an-envelope")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}
}

func TestPositionZeroCopyPayload(t *testing.T) {
	enc := EncodePosition([]byte("Z"))
	p := mustDecode(t, enc)
	if len(p) != 1 {
		t.Fatalf("unexpected payload len")
	}
	// mutate payload slice. should mutate underlying enc bytes (zero-copy)
	p[0] = 'Q'
	p2 := mustDecode(t, enc)
	if p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
