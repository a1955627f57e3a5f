// Package prom exports feedcache metrics to Prometheus. All collectors are
// labeled by cache name, so every cache instance in the process can share
// one Sink (and one registry) without collisions.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	feedcache "github.com/jltournay/farmer-power-platform-sub003"
)

// Sink implements feedcache.Metrics on Prometheus counter/gauge vectors.
type Sink struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	reconnects    *prometheus.CounterVec
	size          *prometheus.GaugeVec
	age           *prometheus.GaugeVec
}

var _ feedcache.Metrics = (*Sink)(nil)

// New builds a Sink and registers its collectors with reg. Registering two
// Sinks against the same registry fails; share one Sink instead.
func New(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcache_hits_total",
			Help: "Reads served from the cached snapshot.",
		}, []string{"cache"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcache_misses_total",
			Help: "Reads that reloaded the snapshot from the store.",
		}, []string{"cache"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcache_invalidations_total",
			Help: "Snapshot drops, by reason and affected id.",
		}, []string{"cache", "reason", "id"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcache_records_skipped_total",
			Help: "Records dropped during a load because parsing failed.",
		}, []string{"cache"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcache_stream_reconnects_total",
			Help: "Change-feed faults followed by a backoff and resubscribe.",
		}, []string{"cache"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedcache_size",
			Help: "Entries in the current snapshot.",
		}, []string{"cache"}),
		age: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedcache_age_seconds",
			Help: "Snapshot age at the last served read.",
		}, []string{"cache"}),
	}

	for _, col := range []prometheus.Collector{
		s.hits, s.misses, s.invalidations, s.skipped, s.reconnects, s.size, s.age,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) Hit(cache string)  { s.hits.WithLabelValues(cache).Inc() }
func (s *Sink) Miss(cache string) { s.misses.WithLabelValues(cache).Inc() }

func (s *Sink) Invalidation(cache, reason, id string) {
	s.invalidations.WithLabelValues(cache, reason, id).Inc()
}

func (s *Sink) RecordSkipped(cache string)   { s.skipped.WithLabelValues(cache).Inc() }
func (s *Sink) StreamReconnect(cache string) { s.reconnects.WithLabelValues(cache).Inc() }

func (s *Sink) ObserveSize(cache string, n int) {
	s.size.WithLabelValues(cache).Set(float64(n))
}

func (s *Sink) ObserveAge(cache string, seconds float64) {
	s.age.WithLabelValues(cache).Set(seconds)
}
