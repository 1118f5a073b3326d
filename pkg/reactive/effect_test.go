package reactive

import "testing"

func TestEffectRunsImmediately(t *testing.T) {
	runs := 0
	NewEffect(func() Cleanup {
		runs++
		return nil
	})

	if runs != 1 {
		t.Errorf("expected 1 initial run, got %d", runs)
	}
}

func TestEffectRerunsOnDependencyChange(t *testing.T) {
	count := NewRef(0)
	runs := 0

	NewEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})

	count.Set(1)
	count.Set(2)

	if runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
}

func TestEffectStaleDependenciesAreCleared(t *testing.T) {
	useA := NewRef(true)
	a := NewRef("a")
	b := NewRef("b")
	runs := 0

	NewEffect(func() Cleanup {
		runs++
		if useA.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		return nil
	})

	// Switch the branch: the effect now depends on b, not a.
	useA.Set(false)
	if runs != 2 {
		t.Fatalf("expected 2 runs after branch switch, got %d", runs)
	}

	a.Set("a2")
	if runs != 2 {
		t.Errorf("write to stale dependency should not re-run, got %d runs", runs)
	}

	b.Set("b2")
	if runs != 3 {
		t.Errorf("write to live dependency should re-run, got %d runs", runs)
	}
}

func TestEffectStopRemovesAllSubscriptions(t *testing.T) {
	a := NewRef(1)
	b := NewRef(2)
	runs := 0

	e := NewEffect(func() Cleanup {
		_ = a.Get()
		_ = b.Get()
		runs++
		return nil
	})

	Stop(e)

	a.Set(10)
	b.Set(20)

	if runs != 1 {
		t.Errorf("stopped effect must not re-run, got %d runs", runs)
	}
	if !e.Stopped() {
		t.Error("expected effect to report stopped")
	}
}

func TestEffectCleanupRunsBeforeRerunAndOnStop(t *testing.T) {
	count := NewRef(0)
	var order []string

	e := NewEffect(func() Cleanup {
		_ = count.Get()
		order = append(order, "run")
		return func() { order = append(order, "cleanup") }
	})

	count.Set(1)
	e.Stop()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestNestedEffectsRestorePreviousSubscriber(t *testing.T) {
	outer := NewRef(0)
	inner := NewRef(0)
	outerRuns := 0
	innerRuns := 0

	NewEffect(func() Cleanup {
		outerRuns++
		if outerRuns == 1 {
			// Creating a nested effect must not steal the outer
			// effect's tracking for reads after it completes.
			NewEffect(func() Cleanup {
				_ = inner.Get()
				innerRuns++
				return nil
			})
		}
		_ = outer.Get()
		return nil
	})

	outer.Set(1)
	if outerRuns != 2 {
		t.Errorf("outer effect should track reads after nested effect, got %d runs", outerRuns)
	}

	inner.Set(1)
	if innerRuns != 2 {
		t.Errorf("inner effect should have its own dependencies, got %d runs", innerRuns)
	}
}

func TestEffectPanicRestoresSubscriber(t *testing.T) {
	count := NewRef(0)

	func() {
		defer func() { _ = recover() }()
		NewEffect(func() Cleanup {
			panic("boom")
		})
	}()

	// Tracking context must be clean: this read happens outside any
	// subscriber and must not subscribe the panicked effect.
	if getCurrentSubscriber() != nil {
		t.Fatal("current subscriber not restored after effect panic")
	}
	count.Set(1)
}

func TestEffectWithSchedulerDefersRun(t *testing.T) {
	count := NewRef(0)
	runs := 0
	var deferred []*Effect

	NewEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	}, WithScheduler(func(e *Effect) {
		deferred = append(deferred, e)
	}))

	count.Set(1)
	count.Set(2)

	if runs != 1 {
		t.Fatalf("scheduled effect must not run inline, got %d runs", runs)
	}
	// Handed off only once until it next runs.
	if len(deferred) != 1 {
		t.Fatalf("expected 1 scheduler handoff, got %d", len(deferred))
	}

	deferred[0].Run()
	if runs != 2 {
		t.Errorf("expected 2 runs after explicit Run, got %d", runs)
	}

	count.Set(3)
	if len(deferred) != 2 {
		t.Errorf("expected new handoff after run, got %d", len(deferred))
	}
}

func TestRunTracked(t *testing.T) {
	count := NewRef(0)
	runs := 0

	e := RunTracked(func() {
		_ = count.Get()
		runs++
	})

	count.Set(1)
	if runs != 2 {
		t.Errorf("expected inline re-run, got %d runs", runs)
	}

	e.Stop()
	count.Set(2)
	if runs != 2 {
		t.Errorf("stopped tracked run must not re-run, got %d", runs)
	}
}
