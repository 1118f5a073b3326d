package runtime

// Node identifies a platform node. Backends choose their own concrete
// type; the renderer only passes these values back into backend methods.
type Node any

// Backend abstracts the node mutation primitives the renderer needs.
// Implementations must be safe to call from the goroutine that drives
// the scheduler; the renderer never calls a backend concurrently.
type Backend interface {
	// CreateElement makes a detached element node with the given tag.
	CreateElement(tag string) Node
	// CreateText makes a detached text node.
	CreateText(text string) Node
	// CreateComment makes a detached comment node. Used for placeholders
	// and fragment anchors.
	CreateComment(text string) Node

	// SetText replaces the content of a text node.
	SetText(node Node, text string)
	// SetElementText replaces all children of an element with one text
	// child.
	SetElementText(el Node, text string)

	// PatchProp applies a single prop/attribute change to an element.
	// prev is nil on first set; next is nil on removal.
	PatchProp(el Node, key string, prev, next any)

	// Insert places node under parent before anchor. A nil anchor
	// appends.
	Insert(node, parent, anchor Node)
	// Remove detaches node from its parent.
	Remove(node Node)

	// Parent returns the parent of node, or nil.
	Parent(node Node) Node
	// NextSibling returns the node after node under the same parent, or
	// nil.
	NextSibling(node Node) Node
}
