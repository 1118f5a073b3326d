package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Type:  TextType,
		Shape: ShapeText,
		Text:  content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment placeholder node. Comments render no visible
// output; the renderer uses them as stable anchors.
func Comment(text string) *VNode {
	return &VNode{
		Type:  CommentType,
		Shape: ShapeComment,
		Text:  text,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	return New(FragmentType, nil, children...)
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns ifTrue when condition holds, ifFalse otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is If with lazy evaluation: fn runs only when condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to vnodes, dropping nils.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// RangeKeyed maps a slice to vnodes, assigning each the key produced by
// keyFn. Keyed lists reconcile by identity across reorders.
func RangeKeyed[T any](items []T, keyFn func(item T) any, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node.WithKey(keyFn(item)))
		}
	}
	return out
}

// HasKeyedChildren reports whether any node in the list carries a key.
// Lists without keys are reconciled positionally.
func HasKeyedChildren(children []*VNode) bool {
	for _, child := range children {
		if child != nil && child.Key != nil {
			return true
		}
	}
	return false
}
