package reactive

import (
	"sync"
	"sync/atomic"
)

// globalIDCounter is the source of unique IDs for all reactive primitives
// and subscribers. IDs are monotonically increasing and never reused.
var globalIDCounter uint64

// nextID returns the next unique ID.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// Subscriber is anything that can be notified when a dependency changes.
// Effects, computeds, and component render effects implement it.
type Subscriber interface {
	// Invalidate notifies the subscriber that one of its dependencies has
	// changed. For effects this re-runs or schedules the effect; for
	// computeds it invalidates the cached value.
	Invalidate()

	// ID returns a unique identifier, used for deduplication.
	ID() uint64
}

// sourceTracker is implemented by subscribers that keep a reverse edge to
// their sources so stale subscriptions can be cleared before a re-run.
type sourceTracker interface {
	Subscriber
	addSource(src *source)
}

// source is one dependency bucket: the set of subscribers registered under
// a single trackable location (a Ref's value, an Object key, a List index,
// a List's length, or a Computed's result).
type source struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// subscribe registers a subscriber, deduplicating by ID. Nested reads of
// the same location inside one subscriber run therefore collapse to a
// single edge.
func (s *source) subscribe(sub Subscriber) {
	if sub == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := sub.ID()
	for _, existing := range s.subs {
		if existing.ID() == id {
			return
		}
	}
	s.subs = append(s.subs, sub)
}

// unsubscribe removes a subscriber by ID.
func (s *source) unsubscribe(sub Subscriber) {
	if sub == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := sub.ID()
	for i, existing := range s.subs {
		if existing.ID() == id {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// trigger notifies all subscribers. The subscriber list is copied before
// notification so invalidations may subscribe or unsubscribe freely.
// Inside a batch the notifications are queued and deduplicated instead.
func (s *source) trigger() {
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	if getBatchDepth() > 0 {
		for _, sub := range subs {
			queuePendingTrigger(sub)
		}
		return
	}

	for _, sub := range subs {
		sub.Invalidate()
	}
}

// hasSubscribers reports whether any subscriber is registered.
func (s *source) hasSubscribers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs) > 0
}

// track registers the current subscriber (if any) on this source and
// records the reverse edge so the subscriber can clean up before re-runs.
func (s *source) track() {
	sub := getCurrentSubscriber()
	if sub == nil {
		return
	}
	s.subscribe(sub)
	if t, ok := sub.(sourceTracker); ok {
		t.addSource(s)
	}
}
