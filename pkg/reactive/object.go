package reactive

import "sync"

// Object is a reactive wrapper over a string-keyed map. Each key gets its
// own dependency bucket, so writing one key triggers only the subscribers
// that read that key. Operations that depend on the key set as a whole
// (Keys, Len, Has of an absent key) track a separate iteration bucket that
// fires when keys are added or removed.
type Object struct {
	id uint64

	mu   sync.RWMutex
	data map[string]any

	depsMu sync.Mutex
	deps   map[string]*source

	// iter fires when the key set changes (add or delete).
	iter source
}

// NewObject creates a reactive object over the given map. The map is
// owned by the wrapper afterwards; a nil map is allowed.
func NewObject(data map[string]any) *Object {
	if data == nil {
		data = make(map[string]any)
	}
	return &Object{
		id:   nextID(),
		data: data,
		deps: make(map[string]*source),
	}
}

// ID returns the unique identifier for this object.
func (o *Object) ID() uint64 {
	return o.id
}

// keyDep returns the dependency bucket for key, creating it on demand.
func (o *Object) keyDep(key string) *source {
	o.depsMu.Lock()
	defer o.depsMu.Unlock()

	dep, ok := o.deps[key]
	if !ok {
		dep = &source{}
		o.deps[key] = dep
	}
	return dep
}

// Get returns the value stored under key and tracks a dependency on it.
// Reading an absent key still tracks, so a later Set of that key triggers.
func (o *Object) Get(key string) any {
	o.mu.RLock()
	value := o.data[key]
	o.mu.RUnlock()

	o.keyDep(key).track()
	return value
}

// Peek returns the value under key without tracking.
func (o *Object) Peek(key string) any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.data[key]
}

// Has reports whether key is present, tracking both the key and the key
// set so additions and deletions trigger.
func (o *Object) Has(key string) bool {
	o.mu.RLock()
	_, ok := o.data[key]
	o.mu.RUnlock()

	o.keyDep(key).track()
	o.iter.track()
	return ok
}

// Set stores value under key. Writing a value equal to the current one
// does not trigger. Adding a new key additionally triggers iteration
// observers.
func (o *Object) Set(key string, value any) {
	o.mu.Lock()
	prev, existed := o.data[key]
	if existed && valuesEqual(prev, value) {
		o.mu.Unlock()
		return
	}
	o.data[key] = value
	o.mu.Unlock()

	o.keyDep(key).trigger()
	if !existed {
		o.iter.trigger()
	}
}

// Delete removes key. Deleting an absent key is a no-op. A real deletion
// triggers the key's dependents and iteration observers.
func (o *Object) Delete(key string) {
	o.mu.Lock()
	_, existed := o.data[key]
	if !existed {
		o.mu.Unlock()
		return
	}
	delete(o.data, key)
	o.mu.Unlock()

	o.keyDep(key).trigger()
	o.iter.trigger()
}

// Keys returns the current key set and tracks iteration.
func (o *Object) Keys() []string {
	o.mu.RLock()
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	o.mu.RUnlock()

	o.iter.track()
	return keys
}

// Len returns the number of keys and tracks iteration.
func (o *Object) Len() int {
	o.mu.RLock()
	n := len(o.data)
	o.mu.RUnlock()

	o.iter.track()
	return n
}

// Snapshot returns a shallow copy of the underlying map without tracking.
func (o *Object) Snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]any, len(o.data))
	for k, v := range o.data {
		out[k] = v
	}
	return out
}

// Replace swaps the entire contents for next, triggering per key: changed
// and removed keys fire their buckets, and iteration fires if the key set
// changed. Triggers are batched so each subscriber is notified once.
func (o *Object) Replace(next map[string]any) {
	if next == nil {
		next = make(map[string]any)
	}

	o.mu.Lock()
	prev := o.data
	o.data = next
	o.mu.Unlock()

	Batch(func() {
		keySetChanged := false
		for k, pv := range prev {
			nv, ok := next[k]
			if !ok {
				keySetChanged = true
				o.keyDep(k).trigger()
			} else if !valuesEqual(pv, nv) {
				o.keyDep(k).trigger()
			}
		}
		for k := range next {
			if _, ok := prev[k]; !ok {
				keySetChanged = true
				o.keyDep(k).trigger()
			}
		}
		if keySetChanged {
			o.iter.trigger()
		}
	})
}
