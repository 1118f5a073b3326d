package runtime

import (
	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// CurrentInstance returns the component instance whose setup or render
// is running on this goroutine, or nil outside component code. Lifecycle
// registration helpers and Inject rely on it.
func CurrentInstance() *ComponentInstance {
	inst, _ := reactive.CurrentCtx().(*ComponentInstance)
	return inst
}

// SetupContext is passed to a component's Setup function.
type SetupContext struct {
	instance *ComponentInstance
}

// Props returns the instance's reactive props object.
func (c *SetupContext) Props() *reactive.Object { return c.instance.props }

// Attrs returns the undeclared attributes. The map identity is stable
// across updates only by key; read it inside render to stay current.
func (c *SetupContext) Attrs() vdom.Props { return c.instance.attrs }

// Slots returns the slot functions passed by the parent.
func (c *SetupContext) Slots() vdom.Slots { return c.instance.slots }

// Emit raises a declared event toward the parent.
func (c *SetupContext) Emit(event string, args ...any) {
	emit(c.instance, event, args...)
}

// Expose publishes values for the parent to reach through the vnode
// ref mechanism. Without a call, nothing is exposed.
func (c *SetupContext) Expose(values map[string]any) {
	c.instance.exposed = values
}

// Instance returns the underlying instance for advanced integrations.
func (c *SetupContext) Instance() *ComponentInstance { return c.instance }

// Access kinds cached per key after the first RenderContext lookup.
const (
	accessMiss uint8 = iota
	accessSetup
	accessData
	accessProps
)

// RenderContext is passed to a Component.Render function. Get resolves
// keys against setup state, then data, then props, caching where each
// key lives after the first hit.
type RenderContext struct {
	instance *ComponentInstance
}

// Get resolves a state key. Reads of data and props keys track the
// calling effect.
func (c *RenderContext) Get(key string) any {
	inst := c.instance
	switch inst.accessCache[key] {
	case accessSetup:
		return inst.setupState[key]
	case accessData:
		return inst.data.Get(key)
	case accessProps:
		return inst.props.Get(key)
	}
	if v, ok := inst.setupState[key]; ok {
		inst.accessCache[key] = accessSetup
		return v
	}
	if inst.data.Has(key) {
		inst.accessCache[key] = accessData
		return inst.data.Get(key)
	}
	if inst.props != nil && inst.props.Has(key) {
		inst.accessCache[key] = accessProps
		return inst.props.Get(key)
	}
	return nil
}

// Set writes a state key, routing to wherever Get would find it. New
// keys land in data so they are reactive.
func (c *RenderContext) Set(key string, value any) {
	inst := c.instance
	switch inst.accessCache[key] {
	case accessSetup:
		inst.setupState[key] = value
		return
	case accessProps:
		// Props flow down. Ignore the write and warn in dev.
		if inst.app != nil && inst.app.dev {
			inst.app.logger.Warn("attempted write to prop", "component", inst.Name(), "prop", key)
		}
		return
	}
	if _, ok := inst.setupState[key]; ok {
		inst.accessCache[key] = accessSetup
		inst.setupState[key] = value
		return
	}
	inst.data.Set(key, value)
}

// Props returns the reactive props object.
func (c *RenderContext) Props() *reactive.Object { return c.instance.props }

// Slots returns the slot functions passed by the parent.
func (c *RenderContext) Slots() vdom.Slots { return c.instance.slots }

// Emit raises a declared event toward the parent.
func (c *RenderContext) Emit(event string, args ...any) {
	emit(c.instance, event, args...)
}

// Provide makes value available to Inject calls in the current
// component's descendants. Must be called during setup.
func Provide(key any, value any) {
	inst := CurrentInstance()
	if inst == nil {
		return
	}
	if inst.provides == nil {
		inst.provides = map[any]any{}
	}
	inst.provides[key] = value
}

// Inject resolves a key provided by the nearest ancestor, falling back
// to app-level provides, then def.
func Inject(key any, def any) any {
	inst := CurrentInstance()
	if inst == nil {
		return def
	}
	for cur := inst.parent; cur != nil; cur = cur.parent {
		if cur.provides != nil {
			if v, ok := cur.provides[key]; ok {
				return v
			}
		}
	}
	if inst.app != nil {
		if v, ok := inst.app.provides[key]; ok {
			return v
		}
	}
	return def
}
