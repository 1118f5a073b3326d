package reactive

import "testing"

func TestScopeOwnsEffects(t *testing.T) {
	scope := NewScope(nil)
	count := NewRef(0)
	runs := 0

	scope.Run(func() {
		NewEffect(func() Cleanup {
			_ = count.Get()
			runs++
			return nil
		})
	})

	scope.Dispose()
	count.Set(1)

	if runs != 1 {
		t.Errorf("disposed scope's effect must not re-run, got %d runs", runs)
	}
}

func TestScopeDisposeChildrenFirst(t *testing.T) {
	var order []string

	parent := NewScope(nil)
	parent.OnCleanup(func() { order = append(order, "parent") })

	child := NewScope(parent)
	child.OnCleanup(func() { order = append(order, "child") })

	grandchild := NewScope(child)
	grandchild.OnCleanup(func() { order = append(order, "grandchild") })

	parent.Dispose()

	want := []string{"grandchild", "child", "parent"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestScopeDisposeIsIdempotent(t *testing.T) {
	scope := NewScope(nil)
	cleanups := 0
	scope.OnCleanup(func() { cleanups++ })

	scope.Dispose()
	scope.Dispose()

	if cleanups != 1 {
		t.Errorf("expected 1 cleanup, got %d", cleanups)
	}
	if !scope.Disposed() {
		t.Error("expected scope to report disposed")
	}
}

func TestScopeOnCleanupAfterDisposeRunsImmediately(t *testing.T) {
	scope := NewScope(nil)
	scope.Dispose()

	ran := false
	scope.OnCleanup(func() { ran = true })

	if !ran {
		t.Error("cleanup registered after dispose should run immediately")
	}
}

func TestScopeValuesWalkAncestors(t *testing.T) {
	type key struct{}

	parent := NewScope(nil)
	parent.SetValue(key{}, "from-parent")
	child := NewScope(parent)

	v, ok := child.GetValue(key{})
	if !ok || v != "from-parent" {
		t.Errorf("expected ancestor value, got %v (found=%v)", v, ok)
	}

	child.SetValue(key{}, "from-child")
	v, _ = child.GetValue(key{})
	if v != "from-child" {
		t.Errorf("child value should shadow parent, got %v", v)
	}

	if _, ok := parent.GetValue("absent"); ok {
		t.Error("absent key should not be found")
	}
}

func TestScopeChildDisposalDetachesFromParent(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	child.Dispose()

	parent.childrenMu.Lock()
	n := len(parent.children)
	parent.childrenMu.Unlock()
	if n != 0 {
		t.Errorf("disposed child should detach from parent, got %d children", n)
	}
}
