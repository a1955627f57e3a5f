package resume

import (
	"context"
	"testing"
)

func TestMemoryStoreEmptyLoad(t *testing.T) {
	ctx := context.Background()
	var s MemoryStore

	pos, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pos != nil {
		t.Fatalf("expected nil position before any Save, got %q", pos)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	var s MemoryStore

	if err := s.Save(ctx, []byte("pos-1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	pos, err := s.Load(ctx)
	if err != nil || string(pos) != "pos-1" {
		t.Fatalf("Load: pos=%q err=%v", pos, err)
	}

	// Load hands out a copy; mutating it must not corrupt the store.
	pos[0] = 'X'
	pos2, err := s.Load(ctx)
	if err != nil || string(pos2) != "pos-1" {
		t.Fatalf("stored position mutated through Load result: pos=%q err=%v", pos2, err)
	}

	// Later Save overwrites unconditionally.
	if err := s.Save(ctx, []byte("pos-2")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	pos3, err := s.Load(ctx)
	if err != nil || string(pos3) != "pos-2" {
		t.Fatalf("overwrite: pos=%q err=%v", pos3, err)
	}
}

func TestMemoryStoreSaveCopies(t *testing.T) {
	ctx := context.Background()
	var s MemoryStore

	buf := []byte("pos-a")
	if err := s.Save(ctx, buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	buf[4] = 'z' // caller reuses its buffer

	pos, err := s.Load(ctx)
	if err != nil || string(pos) != "pos-a" {
		t.Fatalf("Save must copy the position: pos=%q err=%v", pos, err)
	}
}
