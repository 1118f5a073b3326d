package reactive

import (
	"sort"
	"testing"
)

func TestObjectPerKeyTracking(t *testing.T) {
	user := NewObject(map[string]any{"name": "ada", "age": 36})

	nameSub := newTestSubscriber()
	ageSub := newTestSubscriber()

	WithSubscriber(nameSub, func() { _ = user.Get("name") })
	WithSubscriber(ageSub, func() { _ = user.Get("age") })

	user.Set("name", "grace")

	if nameSub.dirtyCount() != 1 {
		t.Errorf("name subscriber: expected 1 invalidation, got %d", nameSub.dirtyCount())
	}
	if ageSub.dirtyCount() != 0 {
		t.Errorf("age subscriber: expected 0 invalidations, got %d", ageSub.dirtyCount())
	}
}

func TestObjectSameValueWriteIsNoop(t *testing.T) {
	user := NewObject(map[string]any{"name": "ada"})
	sub := newTestSubscriber()

	WithSubscriber(sub, func() { _ = user.Get("name") })

	user.Set("name", "ada")
	if sub.dirtyCount() != 0 {
		t.Errorf("equal write should not trigger, got %d", sub.dirtyCount())
	}
}

func TestObjectAbsentKeyReadTracks(t *testing.T) {
	obj := NewObject(nil)
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		if obj.Get("missing") != nil {
			t.Error("expected nil for absent key")
		}
	})

	obj.Set("missing", 1)
	if sub.dirtyCount() != 1 {
		t.Errorf("adding a previously-read key should trigger, got %d", sub.dirtyCount())
	}
}

func TestObjectDeleteTriggers(t *testing.T) {
	obj := NewObject(map[string]any{"a": 1})
	sub := newTestSubscriber()
	iterSub := newTestSubscriber()

	WithSubscriber(sub, func() { _ = obj.Get("a") })
	WithSubscriber(iterSub, func() { _ = obj.Len() })

	obj.Delete("a")

	if sub.dirtyCount() != 1 {
		t.Errorf("delete should trigger key dependents, got %d", sub.dirtyCount())
	}
	if iterSub.dirtyCount() != 1 {
		t.Errorf("delete should trigger iteration observers, got %d", iterSub.dirtyCount())
	}

	// Deleting an absent key is a no-op.
	obj.Delete("a")
	if sub.dirtyCount() != 1 {
		t.Errorf("deleting absent key should not trigger, got %d", sub.dirtyCount())
	}
}

func TestObjectIterationTracking(t *testing.T) {
	obj := NewObject(map[string]any{"a": 1})
	sub := newTestSubscriber()

	WithSubscriber(sub, func() { _ = obj.Keys() })

	// Value change of an existing key does not change the key set.
	obj.Set("a", 2)
	if sub.dirtyCount() != 0 {
		t.Errorf("value write should not trigger iteration observers, got %d", sub.dirtyCount())
	}

	// Adding a key does.
	obj.Set("b", 1)
	if sub.dirtyCount() != 1 {
		t.Errorf("key addition should trigger iteration observers, got %d", sub.dirtyCount())
	}
}

func TestObjectReplaceDiffsPerKey(t *testing.T) {
	obj := NewObject(map[string]any{"keep": 1, "change": 2, "drop": 3})

	keepSub := newTestSubscriber()
	changeSub := newTestSubscriber()
	dropSub := newTestSubscriber()

	WithSubscriber(keepSub, func() { _ = obj.Get("keep") })
	WithSubscriber(changeSub, func() { _ = obj.Get("change") })
	WithSubscriber(dropSub, func() { _ = obj.Get("drop") })

	obj.Replace(map[string]any{"keep": 1, "change": 20, "added": 4})

	if keepSub.dirtyCount() != 0 {
		t.Errorf("unchanged key should not trigger, got %d", keepSub.dirtyCount())
	}
	if changeSub.dirtyCount() != 1 {
		t.Errorf("changed key should trigger once, got %d", changeSub.dirtyCount())
	}
	if dropSub.dirtyCount() != 1 {
		t.Errorf("removed key should trigger once, got %d", dropSub.dirtyCount())
	}

	keys := obj.Keys()
	sort.Strings(keys)
	want := []string{"added", "change", "keep"}
	if len(keys) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("expected keys %v, got %v", want, keys)
			break
		}
	}
}
