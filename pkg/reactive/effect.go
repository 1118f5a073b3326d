package reactive

import (
	"sync"
	"sync/atomic"
)

// Cleanup is returned by an effect function to release resources. It runs
// before the effect re-runs and when the effect is stopped.
type Cleanup func()

// SchedulerFunc defers an invalidated effect instead of re-running it
// inline. The runtime's render scheduler installs one so invalidations
// coalesce into batched flushes.
type SchedulerFunc func(*Effect)

// Effect is a re-runnable tracked computation. While the effect function
// runs, every reactive read subscribes the effect; a later write to any of
// those locations invalidates it.
//
// Before each run the effect unsubscribes from all sources recorded by the
// previous run, so dependencies that are no longer read do not keep
// triggering it.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	// scheduler, when set, receives the effect on invalidation instead of
	// an inline re-run.
	scheduler SchedulerFunc

	sources   []*source
	sourcesMu sync.Mutex

	scope *Scope

	pending atomic.Bool
	stopped atomic.Bool

	// onStop hooks run once when the effect is stopped.
	onStop []func()
}

// EffectOption configures an effect at creation time.
type EffectOption func(*Effect)

// WithScheduler makes invalidations hand the effect to fn instead of
// re-running inline. The recipient is responsible for eventually calling
// Run.
func WithScheduler(fn SchedulerFunc) EffectOption {
	return func(e *Effect) {
		e.scheduler = fn
	}
}

// Lazy prevents the initial run at creation time. The caller drives the
// first run explicitly (the renderer does this for component effects).
func Lazy() EffectOption {
	return func(e *Effect) {
		e.pending.Store(true)
	}
}

// NewEffect creates an effect owned by the current scope and, unless
// created Lazy, runs it immediately to record its initial dependencies.
func NewEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		scope: CurrentScope(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.scope != nil {
		e.scope.registerEffect(e)
	}

	if !e.pending.Load() {
		e.Run()
	}
	return e
}

// RunTracked runs fn once as a tracked computation and returns the effect
// recording its dependencies. The effect has no scheduler, so later writes
// to anything fn read re-run it inline.
func RunTracked(fn func()) *Effect {
	return NewEffect(func() Cleanup {
		fn()
		return nil
	})
}

// ID implements Subscriber.
func (e *Effect) ID() uint64 {
	return e.id
}

// Invalidate implements Subscriber. A stopped effect ignores triggers. An
// effect with a scheduler is handed off at most once until it next runs;
// otherwise it re-runs inline.
func (e *Effect) Invalidate() {
	if e.stopped.Load() {
		return
	}

	if e.scheduler != nil {
		if e.pending.CompareAndSwap(false, true) {
			e.scheduler(e)
		}
		return
	}

	e.Run()
}

// Pending reports whether the effect is scheduled and has not run yet.
func (e *Effect) Pending() bool {
	return e.pending.Load()
}

// Run executes the effect function, clearing stale subscriptions first and
// recording fresh ones during execution. Nested effect runs restore the
// previous subscriber on exit, including panic exits.
func (e *Effect) Run() {
	if e.stopped.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.clearSources()

	old := setCurrentSubscriber(e)
	defer setCurrentSubscriber(old)

	e.cleanup = e.fn()
}

// addSource records a reverse edge; called by sources during tracking.
func (e *Effect) addSource(src *source) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == src {
			return
		}
	}
	e.sources = append(e.sources, src)
}

// clearSources unsubscribes from every source recorded by the last run.
func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

// OnStop registers fn to run once when the effect is stopped.
func (e *Effect) OnStop(fn func()) {
	if e.stopped.Load() {
		fn()
		return
	}
	e.onStop = append(e.onStop, fn)
}

// Stop deactivates the effect: its cleanup runs, every subscription is
// removed, and further triggers are no-ops.
func (e *Effect) Stop() {
	if e.stopped.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.clearSources()

	for _, fn := range e.onStop {
		fn()
	}
	e.onStop = nil
}

// Stopped reports whether the effect has been stopped.
func (e *Effect) Stopped() bool {
	return e.stopped.Load()
}

// Stop deactivates an effect. Equivalent to e.Stop.
func Stop(e *Effect) {
	if e != nil {
		e.Stop()
	}
}
