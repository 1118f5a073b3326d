package runtime

import (
	"fmt"
	"sync/atomic"

	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// RenderFunc produces the component's subtree. Reactive reads inside it
// subscribe the component's render effect.
type RenderFunc func() *vdom.VNode

// Component is a stateful component definition. Definitions are shared
// and immutable after first use; all per-mount state lives on the
// instance.
type Component struct {
	// Name is used in error reports and the component chain printed by
	// warnings. Optional.
	Name string

	// Props declares accepted props: either a []string of names or a
	// PropsSpec with per-prop types, defaults, and validators. Declared
	// props are resolved into the instance's reactive props object;
	// everything else lands in attrs.
	Props any

	// Emits declares events the component raises: a []string of names
	// or a map[string]func(...any) error of payload validators.
	Emits any

	// Mixins are merged into this definition, earlier entries first,
	// with this definition winning conflicts.
	Mixins []*Component

	// Extends merges a single base definition, applied before Mixins.
	Extends *Component

	// Setup runs once per instance before first render. It may return a
	// RenderFunc closing over local reactive state, a map[string]any of
	// state exposed to Render, or a *Pending for async setup.
	Setup func(ctx *SetupContext) (any, error)

	// Render produces the subtree when Setup does not return a
	// RenderFunc.
	Render func(ctx *RenderContext) *vdom.VNode

	// Data returns extra per-instance reactive state, merged under the
	// keys of the returned map. Runs after Setup.
	Data func(ctx *RenderContext) map[string]any

	// InheritAttrs controls fallthrough of undeclared attrs onto a
	// single root element. Defaults to true.
	InheritAttrs *bool
}

func (c *Component) inheritAttrs() bool {
	return c.InheritAttrs == nil || *c.InheritAttrs
}

var instanceUID atomic.Uint64

// ComponentInstance is the per-mount state of a stateful component.
type ComponentInstance struct {
	uid    uint64
	Type   *Component
	parent *ComponentInstance
	app    *App

	// vnode is the component vnode in the parent's tree; subTree is the
	// root of what this component rendered.
	vnode   *vdom.VNode
	subTree *vdom.VNode

	effect *reactive.Effect
	job    *Job
	scope  *reactive.Scope

	props *reactive.Object
	attrs vdom.Props
	slots vdom.Slots

	propsOptions *normalizedProps
	emitsOptions map[string]func(...any) error

	// defaults caches factory-produced default prop values so an absent
	// key resolves to the same value on every re-render.
	defaults map[string]any

	setupState map[string]any
	data       *reactive.Object
	exposed    map[string]any
	renderFn   RenderFunc
	ctx        *RenderContext

	provides map[any]any

	accessCache map[string]uint8

	hooks       map[hookPhase][]func()
	errCapHooks []ErrorCaptureFunc

	emitted map[string]bool

	isMounted   bool
	isUnmounted bool
	suspended   bool

	pendingSetup *Pending
}

// Name returns the component's declared name, or a placeholder.
func (i *ComponentInstance) Name() string {
	if i == nil || i.Type == nil {
		return ""
	}
	if i.Type.Name != "" {
		return i.Type.Name
	}
	return "anonymous"
}

// UID returns the instance's creation-ordered id. Ancestors always have
// lower uids than their descendants.
func (i *ComponentInstance) UID() uint64 { return i.uid }

// Parent returns the nearest stateful ancestor instance, or nil at the
// root.
func (i *ComponentInstance) Parent() *ComponentInstance { return i.parent }

// Props returns the instance's reactive props object. Reads inside
// render or effects subscribe to individual keys.
func (i *ComponentInstance) Props() *reactive.Object { return i.props }

// Attrs returns the undeclared attributes passed by the parent.
func (i *ComponentInstance) Attrs() vdom.Props { return i.attrs }

// Slots returns the slot functions passed by the parent.
func (i *ComponentInstance) Slots() vdom.Slots { return i.slots }

// IsMounted reports whether the instance has completed its first patch.
func (i *ComponentInstance) IsMounted() bool { return i.isMounted }

func newComponentInstance(vnode *vdom.VNode, parent *ComponentInstance, app *App) *ComponentInstance {
	def := resolveComponentType(vnode)
	inst := &ComponentInstance{
		uid:         instanceUID.Add(1),
		Type:        flattenDefinition(def),
		parent:      parent,
		app:         app,
		vnode:       vnode,
		attrs:       vdom.Props{},
		setupState:  map[string]any{},
		accessCache: map[string]uint8{},
		hooks:       map[hookPhase][]func(){},
		data:        reactive.NewObject(nil),
	}
	var parentScope *reactive.Scope
	if parent != nil {
		parentScope = parent.scope
	}
	inst.scope = reactive.NewScope(parentScope)
	inst.propsOptions = app.normalizedPropsFor(inst.Type)
	inst.emitsOptions = normalizeEmits(inst.Type.Emits)
	vnode.Instance = inst
	return inst
}

func resolveComponentType(vnode *vdom.VNode) *Component {
	def, ok := vnode.Type.(*Component)
	if !ok {
		panic(fmt.Sprintf("vnode type %T is not a component definition", vnode.Type))
	}
	return def
}

// flattenDefinition folds Extends and Mixins into a single effective
// definition. The result is cached on the app side via props
// normalization; the merge itself is cheap and deterministic.
func flattenDefinition(def *Component) *Component {
	if def.Extends == nil && len(def.Mixins) == 0 {
		return def
	}
	merged := &Component{}
	if def.Extends != nil {
		mergeDefinition(merged, flattenDefinition(def.Extends))
	}
	for _, m := range def.Mixins {
		mergeDefinition(merged, flattenDefinition(m))
	}
	mergeDefinition(merged, def)
	return merged
}

func mergeDefinition(dst, src *Component) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	dst.Props = mergePropsDecl(dst.Props, src.Props)
	dst.Emits = mergeEmitsDecl(dst.Emits, src.Emits)
	if src.Setup != nil {
		dst.Setup = src.Setup
	}
	if src.Render != nil {
		dst.Render = src.Render
	}
	if src.Data != nil {
		prev := dst.Data
		next := src.Data
		if prev == nil {
			dst.Data = next
		} else {
			dst.Data = func(ctx *RenderContext) map[string]any {
				out := map[string]any{}
				for k, v := range prev(ctx) {
					out[k] = v
				}
				for k, v := range next(ctx) {
					out[k] = v
				}
				return out
			}
		}
	}
	if src.InheritAttrs != nil {
		dst.InheritAttrs = src.InheritAttrs
	}
}

// setupComponent resolves props/slots and runs Setup. It reports whether
// the instance is ready to render; a false return with a nil error means
// setup went async and the caller should mount a placeholder.
func setupComponent(inst *ComponentInstance) (ready bool) {
	initProps(inst, inst.vnode.Props)
	inst.slots = resolveSlots(inst.vnode)
	inst.ctx = &RenderContext{instance: inst}

	def := inst.Type
	if def.Setup == nil {
		finishSetup(inst, nil)
		return true
	}

	var result any
	ok := callWithErrorHandling(inst, PhaseSetup, func() error {
		var err error
		reactive.WithCtx(inst, func() {
			inst.scope.Run(func() {
				result, err = def.Setup(&SetupContext{instance: inst})
			})
		})
		return err
	})
	if !ok {
		// Render a comment in place of the failed component.
		inst.renderFn = func() *vdom.VNode { return vdom.Comment("setup error") }
		return true
	}

	if p, isPending := result.(*Pending); isPending {
		inst.pendingSetup = p
		inst.suspended = true
		if inst.app != nil && inst.app.dev {
			inst.app.logger.Warn("component setup returned a pending handle; mounting placeholder",
				"component", inst.Name())
		}
		return false
	}

	finishSetup(inst, result)
	return true
}

// finishSetup digests the Setup return value and installs the render
// function.
func finishSetup(inst *ComponentInstance, result any) {
	def := inst.Type
	switch v := result.(type) {
	case nil:
	case RenderFunc:
		inst.renderFn = v
	case func() *vdom.VNode:
		inst.renderFn = RenderFunc(v)
	case map[string]any:
		inst.setupState = v
	default:
		handleError(fmt.Errorf("setup returned unsupported type %T", result), inst, PhaseSetup)
	}

	if def.Data != nil {
		callWithErrorHandling(inst, PhaseSetup, func() error {
			reactive.WithCtx(inst, func() {
				inst.data = reactive.NewObject(def.Data(inst.ctx))
			})
			return nil
		})
	}

	if inst.renderFn == nil {
		if def.Render == nil {
			handleError(fmt.Errorf("component has no render function"), inst, PhaseSetup)
			inst.renderFn = func() *vdom.VNode { return vdom.Comment("missing render") }
			return
		}
		ctx := inst.ctx
		render := def.Render
		inst.renderFn = func() *vdom.VNode { return render(ctx) }
	}
}

// renderComponentRoot invokes the render function and post-processes the
// root: attrs fallthrough, instance backlink. A render error yields a
// comment node so the tree stays consistent.
func renderComponentRoot(inst *ComponentInstance) *vdom.VNode {
	var tree *vdom.VNode
	ok := callWithErrorHandling(inst, PhaseRender, func() error {
		reactive.WithCtx(inst, func() {
			tree = inst.renderFn()
		})
		return nil
	})
	if !ok || tree == nil {
		tree = vdom.Comment("")
	}

	if inst.Type.inheritAttrs() && len(inst.attrs) > 0 {
		tree = applyFallthroughAttrs(inst, tree)
	}
	return tree
}

// applyFallthroughAttrs merges undeclared attrs onto a single root
// element or component. Fragment roots skip fallthrough with a dev
// warning, matching the declared-props contract: the parent asked for
// attrs to land somewhere and there is no single somewhere.
func applyFallthroughAttrs(inst *ComponentInstance, root *vdom.VNode) *vdom.VNode {
	if root.Shape&(vdom.ShapeElement|vdom.ShapeComponent) == 0 {
		if inst.app != nil && inst.app.dev && root.Shape&vdom.ShapeComment == 0 {
			inst.app.logger.Warn("extraneous attrs ignored: component root cannot receive fallthrough attrs",
				"component", inst.Name())
		}
		return root
	}
	merged := root.Clone()
	if merged.Props == nil {
		merged.Props = vdom.Props{}
	}
	for k, v := range inst.attrs {
		if _, exists := merged.Props[k]; exists {
			switch k {
			case "class":
				merged.Props[k] = vdom.NormalizeClass([]any{merged.Props[k], v})
				continue
			case "style":
				merged.Props[k] = vdom.NormalizeStyle([]any{merged.Props[k], v})
				continue
			default:
				continue
			}
		}
		merged.Props[k] = v
	}
	// Fallthrough writes outside the declared dynamic set force a full
	// props diff on the root.
	if merged.PatchFlag.Has(vdom.FlagProps) || merged.PatchFlag.Has(vdom.FlagClass) || merged.PatchFlag.Has(vdom.FlagStyle) {
		merged.PatchFlag |= vdom.FlagFullProps
	}
	return merged
}

// resolveSlots extracts slot functions from the component vnode's
// children.
func resolveSlots(vnode *vdom.VNode) vdom.Slots {
	slots := vnode.SlotChildren()
	if slots != nil {
		return slots
	}
	if kids := vnode.ArrayChildren(); len(kids) > 0 {
		copied := make([]*vdom.VNode, len(kids))
		copy(copied, kids)
		return vdom.Slots{"default": func() []*vdom.VNode { return copied }}
	}
	return vdom.Slots{}
}

// shouldUpdateComponent decides whether a parent re-render requires the
// child component to re-render, by comparing the incoming vnode with the
// previous one.
func shouldUpdateComponent(prev, next *vdom.VNode) bool {
	if next.PatchFlag == vdom.FlagBail {
		return true
	}
	if next.PatchFlag > 0 {
		if next.PatchFlag.Has(vdom.FlagFullProps) {
			return propsChanged(prev.Props, next.Props)
		}
		if next.PatchFlag.Has(vdom.FlagProps) {
			for _, key := range next.DynamicProps {
				if !reactive.ValuesEqual(prev.Props[key], next.Props[key]) {
					return true
				}
			}
		}
		return false
	}
	// Unoptimized vnodes: any new-style slot children force an update,
	// otherwise compare props.
	if _, hasSlots := next.Children.(vdom.Slots); hasSlots {
		return true
	}
	if prev.Children != nil || next.Children != nil {
		return true
	}
	return propsChanged(prev.Props, next.Props)
}

func propsChanged(prev, next vdom.Props) bool {
	if len(prev) != len(next) {
		return true
	}
	for k, v := range next {
		pv, ok := prev[k]
		if !ok || !reactive.ValuesEqual(pv, v) {
			return true
		}
	}
	return false
}
