package async

import (
	"sync"
	"testing"

	feedcache "github.com/jltournay/farmer-power-platform-sub003"
)

type recordingMetrics struct {
	mu    sync.Mutex
	calls []string
}

var _ feedcache.Metrics = (*recordingMetrics)(nil)

func (m *recordingMetrics) add(s string) {
	m.mu.Lock()
	m.calls = append(m.calls, s)
	m.mu.Unlock()
}

func (m *recordingMetrics) Hit(c string)                      { m.add("hit:" + c) }
func (m *recordingMetrics) Miss(c string)                     { m.add("miss:" + c) }
func (m *recordingMetrics) Invalidation(c, reason, id string) { m.add("inv:" + reason + ":" + id) }
func (m *recordingMetrics) RecordSkipped(c string)            { m.add("skip:" + c) }
func (m *recordingMetrics) StreamReconnect(c string)          { m.add("reconnect:" + c) }
func (m *recordingMetrics) ObserveSize(c string, n int)       { m.add("size:" + c) }
func (m *recordingMetrics) ObserveAge(c string, a float64)    { m.add("age:" + c) }

func TestAsyncDeliversBeforeClose(t *testing.T) {
	inner := &recordingMetrics{}
	s := New(inner, 1, 16)

	s.Hit("farmer")
	s.Invalidation("farmer", "manual", "all")
	s.ObserveSize("farmer", 3)
	s.Close() // drains the queue

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if len(inner.calls) != 3 {
		t.Fatalf("expected 3 delivered callbacks, got %v", inner.calls)
	}
	if inner.calls[0] != "hit:farmer" {
		t.Fatalf("delivery order broken: %v", inner.calls)
	}
}

func TestAsyncAfterCloseIsDropped(t *testing.T) {
	inner := &recordingMetrics{}
	s := New(inner, 2, 16)
	s.Close()

	// must not panic, must not deliver
	s.Miss("farmer")
	s.Close() // idempotent

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if len(inner.calls) != 0 {
		t.Fatalf("callbacks after Close should be dropped, got %v", inner.calls)
	}
}
