package reactive

import (
	"sync"
	"sync/atomic"
)

// Computed is a cached derived value. The computation runs lazily on the
// first Get and is re-run only after one of its dependencies changed.
// A Computed is itself trackable, so chains of derivations work.
type Computed[T any] struct {
	dep source
	id  uint64

	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid is false when a dependency changed since the last compute.
	valid atomic.Bool

	sources   []*source
	sourcesMu sync.Mutex

	// computing guards against recursive self-reads.
	computing atomic.Bool
}

// NewComputed creates a computed with the given computation. The
// computation does not run until the first Get.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		id:      nextID(),
		compute: compute,
	}
}

// Get returns the computed value, recomputing if a dependency changed, and
// tracks this computed as a dependency of the current subscriber.
func (c *Computed[T]) Get() T {
	c.dep.track()

	if !c.valid.Load() {
		c.recompute()
	}

	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// Peek returns the value without tracking. Still recomputes when stale.
func (c *Computed[T]) Peek() T {
	if !c.valid.Load() {
		c.recompute()
	}
	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// Invalidate implements Subscriber: a dependency changed, so the cached
// value is stale. Downstream subscribers are notified only on the first
// invalidation after a successful compute.
func (c *Computed[T]) Invalidate() {
	if c.valid.CompareAndSwap(true, false) {
		c.dep.trigger()
	}
}

// ID implements Subscriber.
func (c *Computed[T]) ID() uint64 {
	return c.id
}

// addSource implements sourceTracker.
func (c *Computed[T]) addSource(src *source) {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()

	for _, s := range c.sources {
		if s == src {
			return
		}
	}
	c.sources = append(c.sources, src)
}

// Stop detaches the computed from all of its sources. Further dependency
// changes no longer invalidate it; Get keeps returning the last value.
func (c *Computed[T]) Stop() {
	c.sourcesMu.Lock()
	for _, src := range c.sources {
		src.unsubscribe(c)
	}
	c.sources = nil
	c.sourcesMu.Unlock()
	c.valid.Store(true)
}

func (c *Computed[T]) recompute() {
	if c.computing.Swap(true) {
		// Recursive self-read; keep the stale value.
		return
	}
	defer c.computing.Store(false)

	c.sourcesMu.Lock()
	for _, src := range c.sources {
		src.unsubscribe(c)
	}
	c.sources = c.sources[:0]
	c.sourcesMu.Unlock()

	old := setCurrentSubscriber(c)
	next := c.compute()
	setCurrentSubscriber(old)

	c.valueMu.Lock()
	c.value = next
	c.valueMu.Unlock()

	c.valid.Store(true)
}
