package runtime

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lattice-dev/lattice/pkg/vdom"
)

// propsCacheSize bounds the per-app cache of normalized props
// declarations. Apps rarely carry anywhere near this many distinct
// component definitions.
const propsCacheSize = 256

// ErrorHandler receives errors that no error-capture hook swallowed.
// instance may be nil for scheduler-level errors.
type ErrorHandler func(err error, instance *ComponentInstance, phase ErrorPhase)

// AppOption configures an App at creation.
type AppOption func(*App)

// WithLogger sets the app's structured logger. Defaults to
// slog.Default.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) { a.logger = logger }
}

// WithErrorHandler installs the app-level error handler.
func WithErrorHandler(h ErrorHandler) AppOption {
	return func(a *App) { a.errorHandler = h }
}

// WithDevMode enables dev-time warnings: prop validation, undeclared
// emits, async setup notices.
func WithDevMode() AppOption {
	return func(a *App) { a.dev = true }
}

// App binds a root component to a renderer. Create one with
// Renderer.CreateApp, configure it, then Mount it into a backend
// container node.
type App struct {
	be        Backend
	scheduler *Scheduler

	rootComponent *Component
	rootProps     vdom.Props
	rootVNode     *vdom.VNode
	root          *ComponentInstance
	container     Node

	provides map[any]any

	logger       *slog.Logger
	errorHandler ErrorHandler
	dev          bool

	propsCache *lru.Cache[*Component, *normalizedProps]

	mounted bool
}

// CreateApp builds an app for root with the given root props.
func (r *Renderer) CreateApp(root *Component, props vdom.Props, opts ...AppOption) *App {
	cache, _ := lru.New[*Component, *normalizedProps](propsCacheSize)
	a := &App{
		be:            r.be,
		rootComponent: root,
		rootProps:     props,
		provides:      map[any]any{},
		logger:        slog.Default(),
		propsCache:    cache,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.scheduler = NewScheduler(func(err error) {
		if a.errorHandler != nil {
			a.errorHandler(err, nil, PhaseScheduler)
			return
		}
		a.logger.Error("scheduler error", "err", err)
	})
	return a
}

// Provide registers an app-level injection value, visible to every
// component Inject that no ancestor provide shadows. Must be called
// before Mount.
func (a *App) Provide(key, value any) *App {
	a.provides[key] = value
	return a
}

// Mount renders the root component into container and flushes the
// resulting mount work, including mounted hooks. It returns the root
// instance.
func (a *App) Mount(container Node) (*ComponentInstance, error) {
	if a.mounted {
		return nil, fmt.Errorf("app is already mounted")
	}
	a.mounted = true
	a.container = container

	a.rootVNode = vdom.New(a.rootComponent, a.rootProps)
	a.patch(nil, a.rootVNode, container, nil, nil)
	a.root = a.rootVNode.Instance.(*ComponentInstance)
	a.scheduler.Flush()
	return a.root, nil
}

// Unmount tears down the root subtree: beforeUnmount hooks run, effects
// and scopes are disposed, host nodes are removed, and unmounted hooks
// flush.
func (a *App) Unmount() {
	if !a.mounted || a.rootVNode == nil {
		return
	}
	a.unmount(a.rootVNode, nil, true)
	a.scheduler.Flush()
	a.mounted = false
	a.rootVNode = nil
	a.root = nil
}

// Flush drains pending component updates and post callbacks. Callers
// that mutate reactive state outside an event loop use Flush to make the
// backend reflect it.
func (a *App) Flush() {
	a.scheduler.Flush()
}

// NextTick registers fn to run after the current queue of component
// updates drains in the next Flush.
func (a *App) NextTick(fn func()) {
	a.scheduler.EnqueuePost(fn)
}

// Scheduler exposes the app's scheduler for host integrations (session
// loops wire its wake callback).
func (a *App) Scheduler() *Scheduler { return a.scheduler }

// Backend returns the backend this app renders into.
func (a *App) Backend() Backend { return a.be }

// Root returns the mounted root instance, or nil before Mount.
func (a *App) Root() *ComponentInstance { return a.root }

// normalizedPropsFor returns the cached props normalization for a
// definition.
func (a *App) normalizedPropsFor(def *Component) *normalizedProps {
	if np, ok := a.propsCache.Get(def); ok {
		return np
	}
	np := normalizeProps(def.Props)
	a.propsCache.Add(def, np)
	return np
}
