package reactive

import "testing"

func TestRefBasic(t *testing.T) {
	count := NewRef(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestRefTracksCurrentSubscriber(t *testing.T) {
	count := NewRef(0)
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		_ = count.Get()
	})

	count.Set(1)
	if sub.dirtyCount() != 1 {
		t.Errorf("expected 1 invalidation, got %d", sub.dirtyCount())
	}
}

func TestRefPeekDoesNotTrack(t *testing.T) {
	count := NewRef(42)
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		if count.Peek() != 42 {
			t.Errorf("expected 42, got %d", count.Peek())
		}
	})

	count.Set(100)
	if sub.dirtyCount() != 0 {
		t.Errorf("Peek should not subscribe, got %d invalidations", sub.dirtyCount())
	}
}

func TestRefSameValueWriteIsNoop(t *testing.T) {
	name := NewRef("ada")
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		_ = name.Get()
	})

	name.Set("lovelace")
	name.Set("lovelace")
	if sub.dirtyCount() != 1 {
		t.Errorf("second identical write should not trigger, got %d invalidations", sub.dirtyCount())
	}
}

func TestRefNestedReadsCollapseToOneEdge(t *testing.T) {
	count := NewRef(0)
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		_ = count.Get()
		_ = count.Get()
		_ = count.Get()
	})

	count.Set(1)
	if sub.dirtyCount() != 1 {
		t.Errorf("repeated reads should collapse to one subscription, got %d invalidations", sub.dirtyCount())
	}
}

func TestRefCustomEquality(t *testing.T) {
	type point struct{ x, y int }

	// Treat all points with equal x as equal.
	p := NewRef(point{1, 1}).WithEquals(func(a, b point) bool { return a.x == b.x })
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		_ = p.Get()
	})

	p.Set(point{1, 99})
	if sub.dirtyCount() != 0 {
		t.Errorf("custom equality should suppress trigger, got %d", sub.dirtyCount())
	}

	p.Set(point{2, 99})
	if sub.dirtyCount() != 1 {
		t.Errorf("expected 1 invalidation after real change, got %d", sub.dirtyCount())
	}
}

func TestRefDeepEqualFallback(t *testing.T) {
	s := NewRef([]int{1, 2, 3})
	sub := newTestSubscriber()

	WithSubscriber(sub, func() {
		_ = s.Get()
	})

	s.Set([]int{1, 2, 3})
	if sub.dirtyCount() != 0 {
		t.Errorf("deep-equal slice write should not trigger, got %d", sub.dirtyCount())
	}

	s.Set([]int{1, 2, 3, 4})
	if sub.dirtyCount() != 1 {
		t.Errorf("expected 1 invalidation, got %d", sub.dirtyCount())
	}
}
