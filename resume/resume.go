// Package resume stores the change feed's continuation position between
// watcher restarts. With the default MemoryStore a process restart resyncs
// from scratch (the initial warm load covers the gap); RedisStore survives
// restarts so the feed resumes where it left off.
package resume

import (
	"context"
	"sync"
)

// Store persists one continuation position. Load returns nil, nil when no
// position has been recorded yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, pos []byte) error
	Close(ctx context.Context) error
}

// MemoryStore keeps the position in process memory (the default behavior).
// The zero value is ready to use.
type MemoryStore struct {
	mu  sync.Mutex
	pos []byte
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Load(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == nil {
		return nil, nil
	}
	out := make([]byte, len(s.pos))
	copy(out, s.pos)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, pos []byte) error {
	cp := make([]byte, len(pos))
	copy(cp, pos)

	s.mu.Lock()
	s.pos = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
