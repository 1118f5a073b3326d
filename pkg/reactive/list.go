package reactive

import "sync"

// List is a reactive wrapper over a slice. Index reads and writes track
// and trigger per index; anything that grows or shrinks the list triggers
// the length bucket and, on shrink, the dependents of the removed indices.
// Index removal follows length semantics, not delete semantics: truncating
// fires the length bucket rather than per-key delete notifications.
type List struct {
	id uint64

	mu    sync.RWMutex
	items []any

	depsMu sync.Mutex
	deps   map[int]*source

	// length fires whenever the number of items changes.
	length source
}

// NewList creates a reactive list over the given slice. The slice is
// owned by the wrapper afterwards; nil is allowed.
func NewList(items []any) *List {
	return &List{
		id:    nextID(),
		items: items,
		deps:  make(map[int]*source),
	}
}

// ID returns the unique identifier for this list.
func (l *List) ID() uint64 {
	return l.id
}

func (l *List) indexDep(i int) *source {
	l.depsMu.Lock()
	defer l.depsMu.Unlock()

	dep, ok := l.deps[i]
	if !ok {
		dep = &source{}
		l.deps[i] = dep
	}
	return dep
}

// Get returns the item at index i, tracking a dependency on that index.
// Out-of-range reads return nil but still track, so a later append that
// reaches i triggers.
func (l *List) Get(i int) any {
	l.mu.RLock()
	var value any
	if i >= 0 && i < len(l.items) {
		value = l.items[i]
	}
	l.mu.RUnlock()

	if i >= 0 {
		l.indexDep(i).track()
	}
	return value
}

// Peek returns the item at index i without tracking.
func (l *List) Peek(i int) any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Set writes the item at index i. Writing an equal value does not
// trigger. Writing one past the end appends, which also triggers length
// observers.
func (l *List) Set(i int, value any) {
	if i < 0 {
		return
	}

	l.mu.Lock()
	switch {
	case i < len(l.items):
		if valuesEqual(l.items[i], value) {
			l.mu.Unlock()
			return
		}
		l.items[i] = value
		l.mu.Unlock()
		l.indexDep(i).trigger()

	case i == len(l.items):
		l.items = append(l.items, value)
		l.mu.Unlock()
		Batch(func() {
			l.indexDep(i).trigger()
			l.length.trigger()
		})

	default:
		// Sparse writes are not supported.
		l.mu.Unlock()
	}
}

// Append adds items to the end, triggering the new indices and length.
func (l *List) Append(items ...any) {
	if len(items) == 0 {
		return
	}

	l.mu.Lock()
	start := len(l.items)
	l.items = append(l.items, items...)
	l.mu.Unlock()

	Batch(func() {
		for i := range items {
			l.indexDep(start + i).trigger()
		}
		l.length.trigger()
	})
}

// Len returns the item count, tracking length observers.
func (l *List) Len() int {
	l.mu.RLock()
	n := len(l.items)
	l.mu.RUnlock()

	l.length.track()
	return n
}

// SetLen truncates or zero-extends the list to n items. Dependents of
// every removed index are triggered, as are length observers.
func (l *List) SetLen(n int) {
	if n < 0 {
		n = 0
	}

	l.mu.Lock()
	old := len(l.items)
	if n == old {
		l.mu.Unlock()
		return
	}
	if n < old {
		l.items = l.items[:n]
	} else {
		for len(l.items) < n {
			l.items = append(l.items, nil)
		}
	}
	l.mu.Unlock()

	Batch(func() {
		lo, hi := n, old
		if old < n {
			lo, hi = old, n
		}
		for i := lo; i < hi; i++ {
			l.indexDep(i).trigger()
		}
		l.length.trigger()
	})
}

// Values returns a shallow copy of the items, tracking length and every
// index (an iteration read depends on all of them).
func (l *List) Values() []any {
	l.mu.RLock()
	out := make([]any, len(l.items))
	copy(out, l.items)
	l.mu.RUnlock()

	l.length.track()
	for i := range out {
		l.indexDep(i).track()
	}
	return out
}
