package reactive

import (
	"reflect"
	"sync"
)

// Ref is a reactive container for a single value.
// Reading a Ref's value while a subscriber is active (a component render,
// a computed, or an effect run) subscribes that subscriber to changes.
type Ref[T any] struct {
	dep source
	id  uint64

	value T
	mu    sync.RWMutex

	// equal determines whether a write actually changed the value.
	// nil means default equality.
	equal func(T, T) bool
}

// NewRef creates a ref holding the given initial value.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{
		id:    nextID(),
		value: initial,
	}
}

// Get returns the current value and tracks it as a dependency of the
// current subscriber.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	value := r.value
	r.mu.RUnlock()

	r.dep.track()
	return value
}

// Peek returns the current value without tracking a dependency.
func (r *Ref[T]) Peek() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set writes a new value. Dependents are triggered only if the value
// actually changed; writing an equal value is a no-op trigger.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	changed := !r.equals(r.value, value)
	if changed {
		r.value = value
	}
	r.mu.Unlock()

	if changed {
		r.dep.trigger()
	}
}

// Update atomically transforms the value with fn and triggers dependents
// if the result differs from the previous value.
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	next := fn(r.value)
	changed := !r.equals(r.value, next)
	if changed {
		r.value = next
	}
	r.mu.Unlock()

	if changed {
		r.dep.trigger()
	}
}

// WithEquals configures a custom equality function, for value types where
// reflect.DeepEqual is too expensive or has the wrong semantics.
func (r *Ref[T]) WithEquals(fn func(T, T) bool) *Ref[T] {
	r.equal = fn
	return r
}

// ID returns the unique identifier for this ref.
func (r *Ref[T]) ID() uint64 {
	return r.id
}

func (r *Ref[T]) equals(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return valuesEqual(any(a), any(b))
}

// ValuesEqual provides type-appropriate equality: == for common comparable
// types, reflect.DeepEqual for the rest. It is the change-detection
// predicate used by Ref, Object, List, and Watch.
func ValuesEqual(a, b any) bool {
	return valuesEqual(a, b)
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int8:
		bv, ok := b.(int8)
		return ok && av == bv
	case int16:
		bv, ok := b.(int16)
		return ok && av == bv
	case int32:
		bv, ok := b.(int32)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint:
		bv, ok := b.(uint)
		return ok && av == bv
	case uint8:
		bv, ok := b.(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := b.(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := b.(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float32:
		bv, ok := b.(float32)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
