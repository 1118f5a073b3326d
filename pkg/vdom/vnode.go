package vdom

import (
	"fmt"
	"reflect"
)

// ShapeFlag classifies a node and its children for renderer dispatch.
type ShapeFlag uint16

const (
	ShapeElement ShapeFlag = 1 << iota
	ShapeFunctional
	ShapeStateful
	ShapeText
	ShapeComment
	ShapeFragment
	ShapeTextChildren
	ShapeArrayChildren
	ShapeSlotsChildren
)

// ShapeComponent matches both stateful and functional component nodes.
const ShapeComponent = ShapeStateful | ShapeFunctional

// Is reports whether all bits of other are set.
func (f ShapeFlag) Is(other ShapeFlag) bool {
	return f&other != 0
}

// PatchFlag carries compiler hints about what can change in a subtree.
// The renderer treats them purely as fast paths: a tree with no flags is
// diffed fully.
type PatchFlag int32

const (
	// FlagText marks an element whose only dynamic part is its text
	// children.
	FlagText PatchFlag = 1 << iota

	// FlagClass marks an element with a dynamic class binding only.
	FlagClass

	// FlagStyle marks an element with a dynamic style binding only.
	FlagStyle

	// FlagProps marks an element with dynamic non-class/style props; the
	// affected keys are listed in DynamicProps.
	FlagProps

	// FlagFullProps marks an element whose prop keys themselves can
	// change, requiring a full prop diff.
	FlagFullProps

	// FlagStableFragment marks a fragment whose children order never
	// changes.
	FlagStableFragment

	// FlagKeyedFragment marks a fragment with keyed (or partially keyed)
	// children.
	FlagKeyedFragment

	// FlagUnkeyedFragment marks a fragment whose children carry no keys.
	FlagUnkeyedFragment

	// FlagNeedPatch marks a node that only needs ref/directive upkeep.
	FlagNeedPatch
)

// FlagBail disables all fast paths for a subtree (full-diff mode).
const FlagBail PatchFlag = -2

// Has reports whether all bits of other are set. Bail never matches.
func (f PatchFlag) Has(other PatchFlag) bool {
	return f > 0 && f&other != 0
}

// builtin identifies the non-element node types.
type builtin uint8

const (
	// TextType is the vnode type of plain text nodes.
	TextType builtin = iota + 1

	// CommentType is the vnode type of comment placeholder nodes.
	CommentType

	// FragmentType groups children without a backend node of its own.
	FragmentType
)

// Props holds a node's attributes, component props, and listener-shaped
// keys ("onClick", ...).
type Props map[string]any

// SlotFn produces the content of one named slot.
type SlotFn func() []*VNode

// Slots maps slot names to their content producers.
type Slots map[string]SlotFn

// FunctionalComponent is a stateless component: a bare render function
// over props and slots.
type FunctionalComponent func(props Props, slots Slots) *VNode

// VNode is an immutable-per-render descriptor of one unit of output.
//
// Type is one of: a string element tag, TextType/CommentType/FragmentType,
// a FunctionalComponent, or a stateful component definition (any other
// value, resolved by the runtime). After creation only the renderer's
// bookkeeping fields (El, Anchor, Instance, Rendered) change.
//
// The same VNode pointer must not appear in two sibling positions; that
// would corrupt key-based reconciliation. Use Clone when reusing a node.
type VNode struct {
	Type     any
	Props    Props
	Children any // nil, string, []*VNode, or Slots
	Key      any // string, int, or nil

	Shape        ShapeFlag
	PatchFlag    PatchFlag
	DynamicProps []string

	Text string // for TextType and CommentType nodes

	// Renderer bookkeeping. El is the backend node handle; Anchor is the
	// fragment end anchor; Instance is the mounted component instance
	// (opaque here to avoid a runtime import cycle); Rendered is a
	// functional component's render output.
	El       any
	Anchor   any
	Instance any
	Rendered *VNode
}

// New builds a vnode, classifying its shape from typ and children.
//
//   - string: element
//   - TextType/CommentType/FragmentType: built-in
//   - FunctionalComponent: functional component
//   - anything else non-nil: stateful component definition
//   - nil: comment placeholder
//
// A "key" entry in props becomes the node's Key and is removed from the
// props map seen by the renderer.
func New(typ any, props Props, children ...any) *VNode {
	n := &VNode{
		Type:  typ,
		Props: props,
	}

	switch t := typ.(type) {
	case nil:
		n.Type = CommentType
		n.Shape = ShapeComment
	case string:
		n.Shape = ShapeElement
	case builtin:
		switch t {
		case TextType:
			n.Shape = ShapeText
		case CommentType:
			n.Shape = ShapeComment
		case FragmentType:
			n.Shape = ShapeFragment
		}
	case FunctionalComponent:
		n.Shape = ShapeFunctional
	default:
		n.Shape = ShapeStateful
	}

	if props != nil {
		if key, ok := props["key"]; ok {
			n.Key = key
			delete(props, "key")
		}
		if class, ok := props["class"]; ok {
			props["class"] = NormalizeClass(class)
		}
		if style, ok := props["style"]; ok {
			props["style"] = NormalizeStyle(style)
		}
	}

	normalizeChildren(n, children)
	return n
}

// WithFlags attaches compiler patch-flag hints and returns the node.
func (n *VNode) WithFlags(flag PatchFlag, dynamicProps ...string) *VNode {
	n.PatchFlag = flag
	n.DynamicProps = dynamicProps
	return n
}

// WithKey sets the reconciliation key and returns the node.
func (n *VNode) WithKey(key any) *VNode {
	n.Key = key
	return n
}

// normalizeChildren classifies the children shape and stores a canonical
// form: nil, a string (text children), a []*VNode, or Slots.
func normalizeChildren(n *VNode, children []any) {
	switch len(children) {
	case 0:
		return
	case 1:
		switch c := children[0].(type) {
		case nil:
			return
		case string:
			if n.Shape.Is(ShapeComponent) {
				// Component text child becomes its default slot.
				n.Children = Slots{"default": func() []*VNode { return []*VNode{Text(c)} }}
				n.Shape |= ShapeSlotsChildren
				return
			}
			n.Children = c
			n.Shape |= ShapeTextChildren
			return
		case Slots:
			n.Children = c
			n.Shape |= ShapeSlotsChildren
			return
		case *VNode:
			if c == nil {
				return
			}
			n.Children = []*VNode{c}
			n.Shape |= ShapeArrayChildren
			return
		case []*VNode:
			n.Children = c
			n.Shape |= ShapeArrayChildren
			return
		}
	}

	n.Children = flattenChildren(children)
	n.Shape |= ShapeArrayChildren
}

// flattenChildren converts a mixed variadic child list into []*VNode,
// turning strings into text nodes, flattening nested slices, and dropping
// nils.
func flattenChildren(children []any) []*VNode {
	out := make([]*VNode, 0, len(children))
	for _, child := range children {
		switch c := child.(type) {
		case nil:
			continue
		case *VNode:
			if c != nil {
				out = append(out, c)
			}
		case []*VNode:
			for _, sub := range c {
				if sub != nil {
					out = append(out, sub)
				}
			}
		case string:
			out = append(out, Text(c))
		case []any:
			out = append(out, flattenChildren(c)...)
		default:
			out = append(out, Text(fmt.Sprintf("%v", c)))
		}
	}
	return out
}

// ArrayChildren returns the children as a node slice, or nil.
func (n *VNode) ArrayChildren() []*VNode {
	if c, ok := n.Children.([]*VNode); ok {
		return c
	}
	return nil
}

// TextChildren returns the text children, or "".
func (n *VNode) TextChildren() string {
	if c, ok := n.Children.(string); ok {
		return c
	}
	return ""
}

// SlotChildren returns the slot mapping, or nil.
func (n *VNode) SlotChildren() Slots {
	if c, ok := n.Children.(Slots); ok {
		return c
	}
	return nil
}

// SameType reports whether old and next describe the same logical node
// for reconciliation: identical type and identical key (or absent on
// both). Nodes that differ here force an unmount+mount.
func SameType(old, next *VNode) bool {
	return typesMatch(old.Type, next.Type) && old.Key == next.Key
}

// typesMatch compares vnode types. Functional components are funcs and
// not ==-comparable, so they match by code pointer.
func typesMatch(a, b any) bool {
	if af, ok := a.(FunctionalComponent); ok {
		bf, ok := b.(FunctionalComponent)
		return ok && reflect.ValueOf(af).Pointer() == reflect.ValueOf(bf).Pointer()
	}
	if _, ok := b.(FunctionalComponent); ok {
		return false
	}
	return a == b
}

// Clone returns a copy of the node with renderer bookkeeping cleared.
// Children are shared: a clone exists to give a reused node a distinct
// identity among siblings, not to deep-copy the subtree.
func (n *VNode) Clone() *VNode {
	c := *n
	c.El = nil
	c.Anchor = nil
	c.Instance = nil
	c.Rendered = nil
	if n.Props != nil {
		c.Props = make(Props, len(n.Props))
		for k, v := range n.Props {
			c.Props[k] = v
		}
	}
	return &c
}

// String returns a compact description for diagnostics.
func (n *VNode) String() string {
	switch {
	case n == nil:
		return "<nil>"
	case n.Shape.Is(ShapeText):
		return fmt.Sprintf("Text(%q)", n.Text)
	case n.Shape.Is(ShapeComment):
		return "Comment"
	case n.Shape.Is(ShapeFragment):
		return fmt.Sprintf("Fragment(%d)", len(n.ArrayChildren()))
	case n.Shape.Is(ShapeElement):
		return fmt.Sprintf("<%s>", n.Type)
	default:
		return fmt.Sprintf("Component(%T)", n.Type)
	}
}
