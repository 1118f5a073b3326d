package reactive

import "sync/atomic"

// testSubscriber counts invalidations. Used across the package tests.
type testSubscriber struct {
	id    uint64
	dirty atomic.Int64
}

func newTestSubscriber() *testSubscriber {
	return &testSubscriber{id: nextID()}
}

func (s *testSubscriber) Invalidate() {
	s.dirty.Add(1)
}

func (s *testSubscriber) ID() uint64 {
	return s.id
}

func (s *testSubscriber) dirtyCount() int {
	return int(s.dirty.Load())
}
