package reactive

import "testing"

func TestListIndexTracking(t *testing.T) {
	list := NewList([]any{"a", "b", "c"})

	sub0 := newTestSubscriber()
	sub1 := newTestSubscriber()

	WithSubscriber(sub0, func() { _ = list.Get(0) })
	WithSubscriber(sub1, func() { _ = list.Get(1) })

	list.Set(0, "z")

	if sub0.dirtyCount() != 1 {
		t.Errorf("index 0 subscriber: expected 1, got %d", sub0.dirtyCount())
	}
	if sub1.dirtyCount() != 0 {
		t.Errorf("index 1 subscriber: expected 0, got %d", sub1.dirtyCount())
	}
}

func TestListAppendTriggersLengthAndIndex(t *testing.T) {
	list := NewList([]any{"a"})

	lenSub := newTestSubscriber()
	idxSub := newTestSubscriber()

	WithSubscriber(lenSub, func() { _ = list.Len() })
	WithSubscriber(idxSub, func() { _ = list.Get(1) }) // beyond current end

	list.Append("b")

	if lenSub.dirtyCount() != 1 {
		t.Errorf("length subscriber: expected 1, got %d", lenSub.dirtyCount())
	}
	if idxSub.dirtyCount() != 1 {
		t.Errorf("index subscriber: expected 1, got %d", idxSub.dirtyCount())
	}
	if list.Peek(1) != "b" {
		t.Errorf("expected appended value at index 1, got %v", list.Peek(1))
	}
}

func TestListSetLenTruncationTriggersRemovedIndices(t *testing.T) {
	list := NewList([]any{"a", "b", "c"})

	sub2 := newTestSubscriber()
	lenSub := newTestSubscriber()

	WithSubscriber(sub2, func() { _ = list.Get(2) })
	WithSubscriber(lenSub, func() { _ = list.Len() })

	list.SetLen(1)

	if sub2.dirtyCount() != 1 {
		t.Errorf("truncated index should trigger, got %d", sub2.dirtyCount())
	}
	if lenSub.dirtyCount() != 1 {
		t.Errorf("length observers should trigger, got %d", lenSub.dirtyCount())
	}
	if list.Peek(2) != nil {
		t.Errorf("expected nil past new length, got %v", list.Peek(2))
	}

	// Same length again is a no-op.
	list.SetLen(1)
	if lenSub.dirtyCount() != 1 {
		t.Errorf("no-op SetLen should not trigger, got %d", lenSub.dirtyCount())
	}
}

func TestListSetSameValueIsNoop(t *testing.T) {
	list := NewList([]any{1, 2})
	sub := newTestSubscriber()

	WithSubscriber(sub, func() { _ = list.Get(0) })

	list.Set(0, 1)
	if sub.dirtyCount() != 0 {
		t.Errorf("equal write should not trigger, got %d", sub.dirtyCount())
	}
}

func TestListValuesTracksWholeList(t *testing.T) {
	list := NewList([]any{1, 2})
	sub := newTestSubscriber()

	WithSubscriber(sub, func() { _ = list.Values() })

	list.Set(1, 20)
	if sub.dirtyCount() != 1 {
		t.Errorf("index write should trigger iteration reader, got %d", sub.dirtyCount())
	}

	list.Append(3)
	if sub.dirtyCount() < 2 {
		t.Errorf("append should trigger iteration reader, got %d", sub.dirtyCount())
	}
}
