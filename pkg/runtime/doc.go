// Package runtime implements the Lattice component runtime: the render
// scheduler, the component instance model with props/attrs resolution and
// lifecycle hooks, and the renderer that reconciles virtual node trees
// against a platform backend.
//
// # Structure
//
// A Renderer is created over a Backend (an abstract set of node mutation
// primitives; see pkg/backend/memdom for the in-memory implementation).
// An App binds a root component definition to a renderer:
//
//	be := memdom.New()
//	app := runtime.NewRenderer(be).CreateApp(&Counter, nil)
//	root, err := app.Mount(be.Root())
//
// Component state lives in reactive values (pkg/reactive). Each mounted
// component owns one render effect; reads during render subscribe the
// effect, writes schedule its update job on the app's scheduler, and the
// scheduler flush re-renders and patches only what changed.
//
// # Error handling
//
// Errors from setup, render, lifecycle hooks, and watchers are routed
// through one chokepoint: the nearest ancestor with an error-capture hook
// may suppress them; otherwise the app-level handler runs; otherwise the
// error is reported to the app's logger. A failing component aborts only
// its own subtree.
package runtime
