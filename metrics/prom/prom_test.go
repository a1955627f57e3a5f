package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSinkCounts(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	s, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Hit("farmer")
	s.Hit("farmer")
	s.Miss("farmer")
	s.Invalidation("farmer", "stream:delete", "b-42")
	s.RecordSkipped("farmer")
	s.StreamReconnect("farmer")
	s.ObserveSize("farmer", 17)
	s.ObserveAge("farmer", 3.5)

	// a second cache on the same sink must not collide
	s.Hit("agent_config")

	if got := testutil.ToFloat64(s.hits.WithLabelValues("farmer")); got != 2 {
		t.Fatalf("hits: got %v", got)
	}
	if got := testutil.ToFloat64(s.hits.WithLabelValues("agent_config")); got != 1 {
		t.Fatalf("hits other cache: got %v", got)
	}
	if got := testutil.ToFloat64(s.misses.WithLabelValues("farmer")); got != 1 {
		t.Fatalf("misses: got %v", got)
	}
	if got := testutil.ToFloat64(s.invalidations.WithLabelValues("farmer", "stream:delete", "b-42")); got != 1 {
		t.Fatalf("invalidations: got %v", got)
	}
	if got := testutil.ToFloat64(s.size.WithLabelValues("farmer")); got != 17 {
		t.Fatalf("size: got %v", got)
	}
	if got := testutil.ToFloat64(s.age.WithLabelValues("farmer")); got != 3.5 {
		t.Fatalf("age: got %v", got)
	}
}

func TestDoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatalf("second New against the same registry should fail")
	}
}
