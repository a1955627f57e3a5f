// Package async decorates a feedcache.Metrics sink with a bounded worker
// queue, for sinks that might block (remote push, sampled logging). Events
// are dropped when the queue is full rather than back-pressuring the cache.
//
// usage:
//
//	sink := async.New(slowSink, 1, 1000) // 1 worker; queue 1000 events
//	defer sink.Close()
//
//	cache, _ := feedcache.New[Farmer](feedcache.Options[Farmer]{
//	    ...
//	    Metrics: sink,
//	})
package async

import (
	"sync"

	feedcache "github.com/jltournay/farmer-power-platform-sub003"
)

type Sink struct {
	inner feedcache.Metrics
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ feedcache.Metrics = (*Sink)(nil)

func New(inner feedcache.Metrics, workers, qlen int) *Sink {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	s := &Sink{inner: inner, q: make(chan func(), qlen)}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer s.wg.Done()
			for f := range s.q {
				f()
			}
		}()
	}
	return s
}

// Close drains the queue and stops the workers. Callbacks arriving after
// Close are dropped.
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.q)
		s.wg.Wait()
	})
}

func (s *Sink) try(f func()) {
	defer func() { _ = recover() }() // send on closed queue after Close
	select {
	case s.q <- f:
	default: // drop
	}
}

func (s *Sink) Hit(c string)  { s.try(func() { s.inner.Hit(c) }) }
func (s *Sink) Miss(c string) { s.try(func() { s.inner.Miss(c) }) }
func (s *Sink) Invalidation(c, reason, id string) {
	s.try(func() { s.inner.Invalidation(c, reason, id) })
}
func (s *Sink) RecordSkipped(c string)   { s.try(func() { s.inner.RecordSkipped(c) }) }
func (s *Sink) StreamReconnect(c string) { s.try(func() { s.inner.StreamReconnect(c) }) }
func (s *Sink) ObserveSize(c string, n int) {
	s.try(func() { s.inner.ObserveSize(c, n) })
}
func (s *Sink) ObserveAge(c string, sec float64) {
	s.try(func() { s.inner.ObserveAge(c, sec) })
}
