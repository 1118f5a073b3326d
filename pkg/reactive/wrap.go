package reactive

import (
	"reflect"
	"sync"
)

// wrapRegistry maps raw map/slice identity to its wrapper so wrapping the
// same value twice returns the same Object or List. Entries are evicted
// when the wrapper is released via Unwrap, and the key is the data pointer
// of the raw value, so dropped raw values do not pin wrappers beyond the
// registry entry itself.
var wrapRegistry sync.Map

// wrapKeys remembers which registry key each wrapper was stored under,
// since a List's backing array can move after growth.
var wrapKeys sync.Map

// Wrap returns a reactive wrapper for value:
//
//   - map[string]any yields an *Object
//   - []any yields a *List
//   - an existing *Object or *List is returned unchanged
//   - anything else yields a *Ref[any]
//
// Wrapping the same map or slice value twice returns the same wrapper.
func Wrap(value any) any {
	switch v := value.(type) {
	case *Object:
		return v
	case *List:
		return v
	case map[string]any:
		key := reflect.ValueOf(v).Pointer()
		if existing, ok := wrapRegistry.Load(key); ok {
			return existing
		}
		obj := NewObject(v)
		if actual, loaded := wrapRegistry.LoadOrStore(key, obj); loaded {
			return actual
		}
		wrapKeys.Store(obj, key)
		return obj
	case []any:
		// A slice header has no stable identity once it grows, so list
		// registration keys on the backing array's data pointer at wrap
		// time. Re-wrapping the same original slice value hits the entry.
		if v == nil {
			return NewList(nil)
		}
		key := reflect.ValueOf(v).Pointer()
		if existing, ok := wrapRegistry.Load(key); ok {
			return existing
		}
		list := NewList(v)
		if actual, loaded := wrapRegistry.LoadOrStore(key, list); loaded {
			return actual
		}
		wrapKeys.Store(list, key)
		return list
	default:
		return NewRef(value)
	}
}

// WrapObject wraps a map, returning the existing wrapper if the map was
// wrapped before.
func WrapObject(data map[string]any) *Object {
	return Wrap(data).(*Object)
}

// WrapList wraps a slice, returning the existing wrapper if the slice was
// wrapped before.
func WrapList(items []any) *List {
	return Wrap(items).(*List)
}

// Unwrap removes the registry entry for a wrapper created by Wrap, so the
// raw value can be wrapped afresh and the wrapper can be collected.
func Unwrap(wrapper any) {
	if key, ok := wrapKeys.LoadAndDelete(wrapper); ok {
		wrapRegistry.CompareAndDelete(key, wrapper)
	}
}
