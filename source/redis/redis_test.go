package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func testSource(t *testing.T) *Source {
	t.Helper()
	s, err := New(Config{
		Client: goredis.NewClient(&goredis.Options{Addr: "localhost:0"}),
		Hash:   "farmers",
		Stream: "farmers:events",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewValidation(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})

	if _, err := New(Config{Hash: "h", Stream: "s"}); err == nil {
		t.Fatalf("expected error without client")
	}
	if _, err := New(Config{Client: client, Stream: "s"}); err == nil {
		t.Fatalf("expected error without hash key")
	}
	if _, err := New(Config{Client: client, Hash: "h"}); err == nil {
		t.Fatalf("expected error without stream key")
	}

	s, err := New(Config{Client: client, Hash: "h", Stream: "s"})
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if s.count != defaultScanCount {
		t.Fatalf("expected default scan count, got %d", s.count)
	}
}

// Query rejects non-pattern filters before touching the client.
func TestQueryFilterType(t *testing.T) {
	ctx := context.Background()
	s := testSource(t)

	if _, err := s.Query(ctx, 42); err == nil {
		t.Fatalf("expected error for non-string filter")
	}

	cur, err := s.Query(ctx, nil)
	if err != nil {
		t.Fatalf("nil filter: %v", err)
	}
	if cur.(*cursor).match != "*" {
		t.Fatalf("nil filter should scan everything")
	}

	cur, err = s.Query(ctx, "farmer:*")
	if err != nil {
		t.Fatalf("pattern filter: %v", err)
	}
	if cur.(*cursor).match != "farmer:*" {
		t.Fatalf("pattern not carried into cursor")
	}
}

// Subscribe maps a nil resumeFrom to "$" (the present) and a previous
// position to the stored entry ID.
func TestSubscribeResumeMapping(t *testing.T) {
	ctx := context.Background()
	s := testSource(t)

	st, err := s.Subscribe(ctx, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := st.(*stream).last; got != "$" {
		t.Fatalf("nil resume should tail from the present, got %q", got)
	}

	st, err = s.Subscribe(ctx, []byte("1700000000000-3"))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := st.(*stream).last; got != "1700000000000-3" {
		t.Fatalf("resume position not honored, got %q", got)
	}
}
