package runtime

import (
	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// Renderer binds the patch engine to a backend. One renderer can host
// many apps; each app keeps its own scheduler and root.
type Renderer struct {
	be Backend
}

// NewRenderer returns a renderer over be.
func NewRenderer(be Backend) *Renderer {
	return &Renderer{be: be}
}

// Backend returns the renderer's backend.
func (r *Renderer) Backend() Backend { return r.be }

// patch reconciles old into next under container. A nil old mounts next
// from scratch. Nodes of different types are replaced wholesale: the old
// subtree is unmounted and next mounts at its former position.
func (a *App) patch(old, next *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	if old == next {
		return
	}
	if old != nil && !vdom.SameType(old, next) {
		anchor = a.nextHostNode(old)
		a.unmount(old, parent, true)
		old = nil
	}
	if next.PatchFlag == vdom.FlagBail {
		next.DynamicProps = nil
	}

	switch {
	case next.Type == vdom.TextType:
		a.processText(old, next, container, anchor)
	case next.Type == vdom.CommentType:
		a.processComment(old, next, container, anchor)
	case next.Type == vdom.FragmentType:
		a.processFragment(old, next, container, anchor, parent)
	case next.Shape&vdom.ShapeElement != 0:
		a.processElement(old, next, container, anchor, parent)
	case next.Shape&vdom.ShapeComponent != 0:
		a.processComponent(old, next, container, anchor, parent)
	default:
		a.logger.Warn("patch: unhandled vnode shape", "shape", int(next.Shape))
	}
}

func (a *App) processText(old, next *vdom.VNode, container, anchor Node) {
	if old == nil {
		next.El = a.be.CreateText(next.Text)
		a.be.Insert(next.El, container, anchor)
		return
	}
	next.El = old.El
	if old.Text != next.Text {
		a.be.SetText(next.El, next.Text)
	}
}

func (a *App) processComment(old, next *vdom.VNode, container, anchor Node) {
	if old == nil {
		next.El = a.be.CreateComment(next.Text)
		a.be.Insert(next.El, container, anchor)
		return
	}
	// Comments are static; reuse the node.
	next.El = old.El
}

// processFragment mounts or patches a fragment between a pair of empty
// text anchors, so the fragment's children can be addressed as a unit
// even though they have no wrapping element.
func (a *App) processFragment(old, next *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	if old == nil {
		next.El = a.be.CreateText("")
		next.Anchor = a.be.CreateText("")
		a.be.Insert(next.El, container, anchor)
		a.be.Insert(next.Anchor, container, anchor)
		a.mountChildren(next.ArrayChildren(), container, next.Anchor, parent)
		return
	}
	next.El = old.El
	next.Anchor = old.Anchor
	a.patchChildren(old, next, container, next.Anchor, parent)
}

func (a *App) processElement(old, next *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	if old == nil {
		a.mountElement(next, container, anchor, parent)
		return
	}
	a.patchElement(old, next, parent)
}

func (a *App) mountElement(vnode *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	tag := vnode.Type.(string)
	el := a.be.CreateElement(tag)
	vnode.El = el

	for key, value := range vnode.Props {
		if key == "key" {
			continue
		}
		a.be.PatchProp(el, key, nil, value)
	}

	if vnode.Shape&vdom.ShapeTextChildren != 0 {
		a.be.SetElementText(el, vnode.TextChildren())
	} else if vnode.Shape&vdom.ShapeArrayChildren != 0 {
		a.mountChildren(vnode.ArrayChildren(), el, nil, parent)
	}

	a.be.Insert(el, container, anchor)
}

func (a *App) mountChildren(children []*vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	for i, child := range children {
		if child == nil {
			child = vdom.Comment("")
			children[i] = child
		}
		a.patch(nil, child, container, anchor, parent)
	}
}

// patchElement updates an element in place. Patch flags narrow the work
// when the vnode carries them; otherwise every prop is diffed.
func (a *App) patchElement(old, next *vdom.VNode, parent *ComponentInstance) {
	el := old.El
	next.El = el
	flag := next.PatchFlag

	if flag > 0 && !flag.Has(vdom.FlagFullProps) {
		if flag.Has(vdom.FlagClass) {
			if !reactive.ValuesEqual(old.Props["class"], next.Props["class"]) {
				a.be.PatchProp(el, "class", old.Props["class"], next.Props["class"])
			}
		}
		if flag.Has(vdom.FlagStyle) {
			if !reactive.ValuesEqual(old.Props["style"], next.Props["style"]) {
				a.be.PatchProp(el, "style", old.Props["style"], next.Props["style"])
			}
		}
		if flag.Has(vdom.FlagProps) {
			for _, key := range next.DynamicProps {
				prev, cur := old.Props[key], next.Props[key]
				if !reactive.ValuesEqual(prev, cur) {
					a.be.PatchProp(el, key, prev, cur)
				}
			}
		}
	} else {
		a.patchProps(el, old.Props, next.Props)
	}

	if flag.Has(vdom.FlagText) {
		if old.TextChildren() != next.TextChildren() {
			a.be.SetElementText(el, next.TextChildren())
		}
		return
	}
	a.patchChildren(old, next, el, nil, parent)
}

// patchProps performs a full prop diff: changed and added keys are set,
// keys absent from next are removed.
func (a *App) patchProps(el Node, old, next vdom.Props) {
	for key, value := range next {
		if key == "key" {
			continue
		}
		prev, had := old[key]
		if !had || !reactive.ValuesEqual(prev, value) {
			a.be.PatchProp(el, key, prev, value)
		}
	}
	for key, prev := range old {
		if key == "key" {
			continue
		}
		if _, kept := next[key]; !kept {
			a.be.PatchProp(el, key, prev, nil)
		}
	}
}

// patchChildren reconciles the children of an element or fragment.
// container is the host parent of the children; anchor bounds insertion
// for fragments.
func (a *App) patchChildren(old, next *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	oldKids := old.ArrayChildren()
	newKids := next.ArrayChildren()

	if next.Shape&vdom.ShapeTextChildren != 0 {
		if len(oldKids) > 0 {
			a.unmountChildren(oldKids, parent, false)
		}
		if old.Shape&vdom.ShapeTextChildren == 0 || old.TextChildren() != next.TextChildren() {
			a.be.SetElementText(container, next.TextChildren())
		}
		return
	}

	if old.Shape&vdom.ShapeTextChildren != 0 {
		a.be.SetElementText(container, "")
		a.mountChildren(newKids, container, anchor, parent)
		return
	}

	switch {
	case len(oldKids) == 0:
		a.mountChildren(newKids, container, anchor, parent)
	case len(newKids) == 0:
		a.unmountChildren(oldKids, parent, true)
	case next.PatchFlag.Has(vdom.FlagKeyedFragment) ||
		vdom.HasKeyedChildren(oldKids) || vdom.HasKeyedChildren(newKids):
		a.patchKeyedChildren(oldKids, newKids, container, anchor, parent)
	default:
		a.patchUnkeyedChildren(oldKids, newKids, container, anchor, parent)
	}
}

// patchUnkeyedChildren pairs children by position: the common prefix is
// patched, extras are mounted or unmounted.
func (a *App) patchUnkeyedChildren(oldKids, newKids []*vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	common := len(oldKids)
	if len(newKids) < common {
		common = len(newKids)
	}
	for i := 0; i < common; i++ {
		a.patch(oldKids[i], newKids[i], container, anchor, parent)
	}
	if len(oldKids) > common {
		a.unmountChildren(oldKids[common:], parent, true)
	} else if len(newKids) > common {
		a.mountChildren(newKids[common:], container, anchor, parent)
	}
}

// patchKeyedChildren reconciles keyed lists with the dual-end algorithm:
// matching head and tail runs patch in place, then the remaining middle
// is matched by key, unmatched old nodes unmount, and moves follow the
// longest stable subsequence so reordering touches the minimum number of
// nodes.
func (a *App) patchKeyedChildren(oldKids, newKids []*vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	i := 0
	e1 := len(oldKids) - 1
	e2 := len(newKids) - 1

	// Head sync.
	for i <= e1 && i <= e2 {
		o, n := oldKids[i], newKids[i]
		if !sameKeyedNode(o, n) {
			break
		}
		a.patch(o, n, container, anchor, parent)
		i++
	}
	// Tail sync.
	for i <= e1 && i <= e2 {
		o, n := oldKids[e1], newKids[e2]
		if !sameKeyedNode(o, n) {
			break
		}
		a.patch(o, n, container, anchor, parent)
		e1--
		e2--
	}

	switch {
	case i > e1:
		// Only additions remain. Insert before the node after the new
		// tail run, or the outer anchor when the run is empty.
		insertAnchor := anchor
		if e2+1 < len(newKids) {
			insertAnchor = a.firstHostNode(newKids[e2+1])
		}
		for ; i <= e2; i++ {
			a.patch(nil, newKids[i], container, insertAnchor, parent)
		}
	case i > e2:
		// Only removals remain.
		for ; i <= e1; i++ {
			a.unmount(oldKids[i], parent, true)
		}
	default:
		a.patchMiddle(oldKids, newKids, i, e1, e2, container, anchor, parent)
	}
}

// patchMiddle handles the unknown region left after head/tail sync.
func (a *App) patchMiddle(oldKids, newKids []*vdom.VNode, start, e1, e2 int, container, anchor Node, parent *ComponentInstance) {
	keyToNewIndex := make(map[any]int, e2-start+1)
	for j := start; j <= e2; j++ {
		if k := newKids[j].Key; k != nil {
			keyToNewIndex[k] = j
		}
	}

	toBePatched := e2 - start + 1
	patched := 0
	// newIndexToOldIndex[j] holds oldIndex+1 for the new child at
	// start+j; 0 means no old match, so it mounts fresh.
	newIndexToOldIndex := make([]int, toBePatched)

	moved := false
	maxNewIndexSoFar := 0

	for j := start; j <= e1; j++ {
		o := oldKids[j]
		if patched >= toBePatched {
			a.unmount(o, parent, true)
			continue
		}
		newIndex, found := -1, false
		if o.Key != nil {
			newIndex, found = keyToNewIndex[o.Key]
		} else {
			// Keyless old node: pair with the first unmatched keyless
			// new node of the same type.
			for j2 := start; j2 <= e2; j2++ {
				if newIndexToOldIndex[j2-start] == 0 && newKids[j2].Key == nil && vdom.SameType(o, newKids[j2]) {
					newIndex, found = j2, true
					break
				}
			}
		}
		if !found {
			a.unmount(o, parent, true)
			continue
		}
		newIndexToOldIndex[newIndex-start] = j + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		a.patch(o, newKids[newIndex], container, anchor, parent)
		patched++
	}

	var stable []int
	if moved {
		stable = longestIncreasingSubsequence(newIndexToOldIndex)
	}
	s := len(stable) - 1

	// Walk backwards so each insertion anchor is already in place.
	for j := toBePatched - 1; j >= 0; j-- {
		newIndex := start + j
		n := newKids[newIndex]
		var insertAnchor Node
		if newIndex+1 < len(newKids) {
			insertAnchor = a.firstHostNode(newKids[newIndex+1])
		} else {
			insertAnchor = anchor
		}
		if newIndexToOldIndex[j] == 0 {
			a.patch(nil, n, container, insertAnchor, parent)
			continue
		}
		if moved {
			if s < 0 || j != stable[s] {
				a.move(n, container, insertAnchor)
			} else {
				s--
			}
		}
	}
}

func sameKeyedNode(old, next *vdom.VNode) bool {
	return vdom.SameType(old, next) && reactive.ValuesEqual(old.Key, next.Key)
}

// move relocates a mounted vnode's host nodes without re-rendering.
func (a *App) move(vnode *vdom.VNode, container, anchor Node) {
	switch {
	case vnode.Shape&vdom.ShapeComponent != 0:
		if inst, ok := vnode.Instance.(*ComponentInstance); ok && inst.subTree != nil {
			a.move(inst.subTree, container, anchor)
		} else if vnode.Rendered != nil {
			a.move(vnode.Rendered, container, anchor)
		}
	case vnode.Type == vdom.FragmentType:
		a.be.Insert(vnode.El, container, anchor)
		for _, child := range vnode.ArrayChildren() {
			a.move(child, container, anchor)
		}
		a.be.Insert(vnode.Anchor, container, anchor)
	default:
		a.be.Insert(vnode.El, container, anchor)
	}
}

// unmount removes a vnode's subtree. doRemove is false inside an element
// subtree already being detached wholesale, so only the outermost host
// nodes are actually removed from the backend.
func (a *App) unmount(vnode *vdom.VNode, parent *ComponentInstance, doRemove bool) {
	switch {
	case vnode.Shape&vdom.ShapeStateful != 0:
		if inst, ok := vnode.Instance.(*ComponentInstance); ok {
			a.unmountComponent(inst, doRemove)
		}
	case vnode.Shape&vdom.ShapeFunctional != 0:
		if vnode.Rendered != nil {
			a.unmount(vnode.Rendered, parent, doRemove)
		}
	case vnode.Type == vdom.FragmentType:
		a.unmountChildren(vnode.ArrayChildren(), parent, doRemove)
		if doRemove {
			a.be.Remove(vnode.El)
			a.be.Remove(vnode.Anchor)
		}
	default:
		if vnode.Shape&vdom.ShapeArrayChildren != 0 {
			// Descendant components still need teardown, but their host
			// nodes leave with this element.
			a.unmountChildren(vnode.ArrayChildren(), parent, false)
		}
		if doRemove {
			a.be.Remove(vnode.El)
		}
	}
}

func (a *App) unmountChildren(children []*vdom.VNode, parent *ComponentInstance, doRemove bool) {
	for _, child := range children {
		if child != nil {
			a.unmount(child, parent, doRemove)
		}
	}
}

func (a *App) processComponent(old, next *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	if next.Shape&vdom.ShapeFunctional != 0 {
		a.processFunctional(old, next, container, anchor, parent)
		return
	}
	if old == nil {
		a.mountComponent(next, container, anchor, parent)
		return
	}
	a.updateComponent(old, next)
}

// processFunctional renders a functional component inline. It has no
// instance and no own effect: it re-renders exactly when its parent
// does.
func (a *App) processFunctional(old, next *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	fn := next.Type.(vdom.FunctionalComponent)
	props := next.Props
	if props == nil {
		props = vdom.Props{}
	}
	var rendered *vdom.VNode
	ok := callWithErrorHandling(parent, PhaseRender, func() error {
		rendered = fn(props, resolveSlots(next))
		return nil
	})
	if !ok || rendered == nil {
		rendered = vdom.Comment("")
	}
	var prev *vdom.VNode
	if old != nil {
		prev = old.Rendered
	}
	a.patch(prev, rendered, container, anchor, parent)
	next.Rendered = rendered
	next.El = rendered.El
	next.Anchor = rendered.Anchor
}

func (a *App) mountComponent(vnode *vdom.VNode, container, anchor Node, parent *ComponentInstance) {
	inst := newComponentInstance(vnode, parent, a)

	if !setupComponent(inst) {
		// Async setup: mount a placeholder and resume once the handle
		// settles.
		placeholder := vdom.Comment("pending")
		a.patch(nil, placeholder, container, anchor, nil)
		inst.subTree = placeholder
		vnode.El = placeholder.El
		inst.pendingSetup.subscribe(func(result any, err error) {
			a.scheduler.Enqueue(&Job{
				ID:           inst.uid,
				AllowRecurse: false,
				Fn: func() {
					a.resumeComponent(inst, result, err)
				},
			})
		})
		return
	}
	a.setupRenderEffect(inst, container, anchor)
}

// resumeComponent finishes an async setup on the scheduler goroutine.
func (a *App) resumeComponent(inst *ComponentInstance, result any, err error) {
	if inst.isUnmounted {
		return
	}
	if err != nil {
		handleError(err, inst, PhaseAsyncSetup)
		return
	}
	inst.suspended = false
	finishSetup(inst, result)
	placeholder := inst.subTree
	container := a.be.Parent(placeholder.El)
	anchor := a.be.NextSibling(placeholder.El)
	inst.subTree = nil
	a.setupRenderEffectFrom(inst, container, anchor, placeholder)
}

func (a *App) setupRenderEffect(inst *ComponentInstance, container, anchor Node) {
	a.setupRenderEffectFrom(inst, container, anchor, nil)
}

// setupRenderEffectFrom creates the component's render effect and job
// and runs the first render. A non-nil replacing vnode (the async setup
// placeholder) is patched away by the first render.
func (a *App) setupRenderEffectFrom(inst *ComponentInstance, container, anchor Node, replacing *vdom.VNode) {
	inst.job = &Job{
		ID:           inst.uid,
		AllowRecurse: true,
	}
	inst.job.Fn = func() {
		inst.effect.Run()
	}

	update := func() reactive.Cleanup {
		a.componentUpdate(inst, container, anchor, replacing)
		replacing = nil
		return nil
	}
	inst.effect = reactive.NewEffect(update,
		reactive.Lazy(),
		reactive.WithScheduler(func(*reactive.Effect) {
			a.scheduler.Enqueue(inst.job)
		}))
	inst.effect.Run()
}

// componentUpdate is the body of a component's render effect: it renders
// the subtree and patches it against the previous one. Reactive reads
// during the render subscribe this effect.
func (a *App) componentUpdate(inst *ComponentInstance, container, anchor Node, replacing *vdom.VNode) {
	if inst.isUnmounted {
		return
	}

	if !inst.isMounted {
		invokeHooks(inst, hookBeforeMount)
		tree := renderComponentRoot(inst)
		a.patch(replacing, tree, container, anchor, inst)
		inst.subTree = tree
		inst.vnode.El = tree.El
		inst.vnode.Anchor = tree.Anchor
		inst.isMounted = true
		a.scheduler.EnqueuePost(func() {
			if !inst.isUnmounted {
				invokeHooks(inst, hookMounted)
			}
		})
		return
	}

	invokeHooks(inst, hookBeforeUpdate)
	prev := inst.subTree
	tree := renderComponentRoot(inst)
	a.patch(prev, tree, a.hostParent(prev), nil, inst)
	inst.subTree = tree
	inst.vnode.El = tree.El
	inst.vnode.Anchor = tree.Anchor
	a.scheduler.EnqueuePost(func() {
		if !inst.isUnmounted {
			invokeHooks(inst, hookUpdated)
		}
	})
}

// updateComponent handles a parent re-render reaching a mounted child
// component. When the incoming vnode cannot affect the child's output,
// the vnode is adopted without re-rendering.
func (a *App) updateComponent(old, next *vdom.VNode) {
	inst := old.Instance.(*ComponentInstance)
	next.Instance = inst

	if inst.suspended {
		// Still waiting on async setup: adopt the vnode so props are
		// fresh when the component resumes.
		next.El = old.El
		inst.vnode = next
		return
	}

	if !shouldUpdateComponent(old, next) {
		next.El = old.El
		next.Anchor = old.Anchor
		inst.vnode = next
		return
	}

	// Adopt the incoming vnode before the run, outside the render
	// effect, so the props writes do not invalidate the effect they are
	// about to drive.
	next.El = old.El
	next.Anchor = old.Anchor
	updateProps(inst, next)
	inst.slots = resolveSlots(next)
	next.Instance = inst
	inst.vnode = next

	// The props writes may have scheduled the child's own job; this
	// synchronous update subsumes it.
	a.scheduler.Invalidate(inst.job)
	inst.effect.Run()
}

func (a *App) unmountComponent(inst *ComponentInstance, doRemove bool) {
	invokeHooks(inst, hookBeforeUnmount)

	if inst.effect != nil {
		inst.effect.Stop()
	}
	if inst.job != nil {
		a.scheduler.Invalidate(inst.job)
		inst.job.Dispose()
	}
	inst.scope.Dispose()

	if inst.subTree != nil {
		a.unmount(inst.subTree, inst, doRemove)
	}
	inst.isUnmounted = true

	a.scheduler.EnqueuePost(func() {
		invokeHooks(inst, hookUnmounted)
	})
}

// firstHostNode returns the leading backend node of a mounted vnode.
func (a *App) firstHostNode(vnode *vdom.VNode) Node {
	switch {
	case vnode.Shape&vdom.ShapeStateful != 0:
		if inst, ok := vnode.Instance.(*ComponentInstance); ok && inst.subTree != nil {
			return a.firstHostNode(inst.subTree)
		}
		return vnode.El
	case vnode.Shape&vdom.ShapeFunctional != 0:
		if vnode.Rendered != nil {
			return a.firstHostNode(vnode.Rendered)
		}
		return vnode.El
	default:
		return vnode.El
	}
}

// lastHostNode returns the trailing backend node of a mounted vnode
// (the end anchor for fragments).
func (a *App) lastHostNode(vnode *vdom.VNode) Node {
	switch {
	case vnode.Shape&vdom.ShapeStateful != 0:
		if inst, ok := vnode.Instance.(*ComponentInstance); ok && inst.subTree != nil {
			return a.lastHostNode(inst.subTree)
		}
		return vnode.El
	case vnode.Shape&vdom.ShapeFunctional != 0:
		if vnode.Rendered != nil {
			return a.lastHostNode(vnode.Rendered)
		}
		return vnode.El
	case vnode.Type == vdom.FragmentType:
		return vnode.Anchor
	default:
		return vnode.El
	}
}

// nextHostNode returns the backend node immediately after vnode's
// subtree, used as the insertion anchor when replacing it.
func (a *App) nextHostNode(vnode *vdom.VNode) Node {
	last := a.lastHostNode(vnode)
	if last == nil {
		return nil
	}
	return a.be.NextSibling(last)
}

func (a *App) hostParent(vnode *vdom.VNode) Node {
	first := a.firstHostNode(vnode)
	if first == nil {
		return nil
	}
	return a.be.Parent(first)
}
