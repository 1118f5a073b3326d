package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for one goroutine. Each
// goroutine has its own context so concurrent sessions can render
// independently without interfering with each other's dependency edges.
type trackingContext struct {
	// currentSubscriber is what is currently tracking dependencies.
	// When a reactive value is read, it subscribes this subscriber.
	// nil means reads do not create subscriptions.
	currentSubscriber Subscriber

	// currentScope owns newly created effects and cleanups.
	currentScope *Scope

	// batchDepth tracks nested Batch() calls. When > 0, triggers queue
	// notifications instead of firing immediately.
	batchDepth int

	// pendingTriggers accumulates subscribers to notify when the
	// outermost batch completes. Deduplicated by ID before notification.
	pendingTriggers []Subscriber

	// currentCtx holds an opaque runtime context (the component instance
	// being set up, or a session event context). Stored as any to avoid
	// import cycles with the runtime package.
	currentCtx any
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack.
// Implementation detail; never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack header is "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current
// goroutine, creating one if needed.
func getTrackingContext() *trackingContext {
	gid := goroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// getCurrentSubscriber returns the subscriber currently tracking
// dependencies, or nil if tracking is inactive.
func getCurrentSubscriber() Subscriber {
	return getTrackingContext().currentSubscriber
}

// setCurrentSubscriber installs a subscriber and returns the previous one
// so callers can restore it (stack discipline, including panic paths).
func setCurrentSubscriber(sub Subscriber) Subscriber {
	ctx := getTrackingContext()
	old := ctx.currentSubscriber
	ctx.currentSubscriber = sub
	return old
}

// CurrentScope returns the scope that owns newly created effects, or nil.
func CurrentScope() *Scope {
	return getTrackingContext().currentScope
}

func setCurrentScope(s *Scope) *Scope {
	ctx := getTrackingContext()
	old := ctx.currentScope
	ctx.currentScope = s
	return old
}

func getBatchDepth() int {
	return getTrackingContext().batchDepth
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth returns true when the outermost batch completes.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

func queuePendingTrigger(sub Subscriber) {
	ctx := getTrackingContext()
	ctx.pendingTriggers = append(ctx.pendingTriggers, sub)
}

func drainPendingTriggers() []Subscriber {
	ctx := getTrackingContext()
	pending := ctx.pendingTriggers
	ctx.pendingTriggers = nil
	return pending
}

// WithSubscriber runs fn with the given subscriber installed for
// dependency tracking. The previous subscriber is restored on exit, even
// if fn panics.
func WithSubscriber(sub Subscriber, fn func()) {
	old := setCurrentSubscriber(sub)
	defer setCurrentSubscriber(old)
	fn()
}

// WithScope runs fn with the given scope owning any effects it creates.
// Used when spawning goroutines that must create reactive state belonging
// to a specific component.
func WithScope(s *Scope, fn func()) {
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
}

// Untracked runs fn without recording dependencies. Reads inside fn do not
// subscribe the current subscriber. For a single read, Peek is cheaper.
func Untracked(fn func()) {
	old := setCurrentSubscriber(nil)
	defer setCurrentSubscriber(old)
	fn()
}

// CurrentCtx returns the opaque runtime context for this goroutine, or
// nil. The runtime package stores the component instance being set up
// here; sessions store their event context.
func CurrentCtx() any {
	return getTrackingContext().currentCtx
}

// WithCtx runs fn with the given opaque runtime context installed.
func WithCtx(c any, fn func()) {
	ctx := getTrackingContext()
	old := ctx.currentCtx
	ctx.currentCtx = c
	defer func() { ctx.currentCtx = old }()
	fn()
}

// cleanupGoroutineContext removes the tracking context for the current
// goroutine. Optional; contexts are small and reused.
func cleanupGoroutineContext() {
	trackingContexts.Delete(goroutineID())
}
