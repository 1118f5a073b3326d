// Package reactive provides the dependency-tracking core for Lattice.
//
// The reactive system provides fine-grained reactivity: dependencies are
// recorded automatically at runtime. Reading a reactive value while a
// subscriber (an effect, a computed, or a component render) is running
// subscribes that subscriber to the value's changes.
//
// # Core Types
//
// Ref[T] is a reactive value container:
//
//	count := NewRef(0)
//	value := count.Get()  // Read (subscribes current subscriber)
//	count.Set(5)          // Write (triggers dependents)
//
// Object and List wrap string-keyed maps and slices with per-key and
// per-index dependency tracking:
//
//	user := NewObject(map[string]any{"name": "Ada"})
//	user.Get("name")      // Tracks the "name" key only
//	user.Set("name", "B") // Triggers "name" dependents only
//
// Computed[T] is a cached derived computation:
//
//	doubled := NewComputed(func() int { return count.Get() * 2 })
//
// Effect re-runs when any dependency read during its last run changes:
//
//	NewEffect(func() {
//	    fmt.Println("count is", count.Get())
//	})
//
// # Batching
//
// Multiple writes can be grouped so dependents are triggered once:
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//
// # Concurrency
//
// The tracking context (current subscriber, current scope, batch depth) is
// per-goroutine. Within one goroutine the model is single-threaded and
// cooperative; separate goroutines get independent tracking contexts, so
// concurrent sessions do not interfere with each other's dependency
// recording.
package reactive
