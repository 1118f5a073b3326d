// Package memdom is an in-memory document backend for the Lattice
// renderer. It keeps a plain node tree, counts every mutation, and
// serializes subtrees to HTML. The runtime's own tests patch against it,
// server sessions use it for server-side rendering of the initial page,
// and it doubles as a reference implementation for wire backends.
package memdom

import (
	"sort"
	"strings"

	"github.com/lattice-dev/lattice/pkg/runtime"
)

// NodeKind discriminates the node types a document holds.
type NodeKind int

const (
	Element NodeKind = iota
	Text
	Comment
)

// Node is one node in the in-memory tree.
type Node struct {
	Kind NodeKind
	// Tag is set for elements.
	Tag string
	// Text holds text or comment content.
	Text string
	// Attrs holds element attributes. Event handler values (funcs) are
	// kept here too so sessions can dispatch events to them.
	Attrs map[string]any

	parent   *Node
	children []*Node

	doc *Document
}

// Parent returns the node's parent, nil at a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in order. The slice is shared;
// callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }

// Counters tallies backend mutations. Tests reset them and assert on
// the exact operation mix a patch should produce.
type Counters struct {
	CreateElement int
	CreateText    int
	CreateComment int
	SetText       int
	SetElemText   int
	PatchProp     int
	Insert        int
	Remove        int
}

// Document is an in-memory node tree implementing runtime.Backend.
// It is not safe for concurrent use; drive it from one goroutine, the
// same one that flushes the app's scheduler.
type Document struct {
	root     *Node
	counters Counters
}

var _ runtime.Backend = (*Document)(nil)

// New returns an empty document with a root element.
func New() *Document {
	d := &Document{}
	d.root = &Node{Kind: Element, Tag: "#root", Attrs: map[string]any{}, doc: d}
	return d
}

// Root returns the document's root container node.
func (d *Document) Root() *Node { return d.root }

// Counters returns the mutation tallies since the last reset.
func (d *Document) Counters() Counters { return d.counters }

// ResetCounters zeroes the mutation tallies.
func (d *Document) ResetCounters() { d.counters = Counters{} }

func (d *Document) CreateElement(tag string) runtime.Node {
	d.counters.CreateElement++
	return &Node{Kind: Element, Tag: tag, Attrs: map[string]any{}, doc: d}
}

func (d *Document) CreateText(text string) runtime.Node {
	d.counters.CreateText++
	return &Node{Kind: Text, Text: text, doc: d}
}

func (d *Document) CreateComment(text string) runtime.Node {
	d.counters.CreateComment++
	return &Node{Kind: Comment, Text: text, doc: d}
}

func (d *Document) SetText(node runtime.Node, text string) {
	d.counters.SetText++
	node.(*Node).Text = text
}

func (d *Document) SetElementText(el runtime.Node, text string) {
	d.counters.SetElemText++
	n := el.(*Node)
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = n.children[:0]
	if text != "" {
		n.children = append(n.children, &Node{Kind: Text, Text: text, parent: n, doc: d})
	}
}

func (d *Document) PatchProp(el runtime.Node, key string, prev, next any) {
	d.counters.PatchProp++
	n := el.(*Node)
	if next == nil {
		delete(n.Attrs, key)
		return
	}
	n.Attrs[key] = next
}

func (d *Document) Insert(node, parent, anchor runtime.Node) {
	d.counters.Insert++
	child := node.(*Node)
	p := parent.(*Node)
	if child.parent != nil {
		child.parent.detach(child)
	}
	if anchor == nil {
		child.parent = p
		p.children = append(p.children, child)
		return
	}
	at := p.indexOf(anchor.(*Node))
	if at < 0 {
		child.parent = p
		p.children = append(p.children, child)
		return
	}
	child.parent = p
	p.children = append(p.children, nil)
	copy(p.children[at+1:], p.children[at:])
	p.children[at] = child
}

func (d *Document) Remove(node runtime.Node) {
	d.counters.Remove++
	n := node.(*Node)
	if n.parent != nil {
		n.parent.detach(n)
	}
}

func (d *Document) Parent(node runtime.Node) runtime.Node {
	n := node.(*Node)
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (d *Document) NextSibling(node runtime.Node) runtime.Node {
	n := node.(*Node)
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	child.parent = nil
}

// HTML serializes the document body (the root's children).
func (d *Document) HTML() string {
	var b strings.Builder
	for _, child := range d.root.children {
		child.writeHTML(&b)
	}
	return b.String()
}

// HTML serializes the node and its subtree.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	switch n.Kind {
	case Text:
		b.WriteString(escapeHTML(n.Text))
	case Comment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
	case Element:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		n.writeAttrs(b)
		if isVoidElement(n.Tag) {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, child := range n.children {
			child.writeHTML(b)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

// writeAttrs emits attributes in sorted key order so output is
// deterministic. Event handlers and other non-stringable values are
// skipped; they have no HTML form.
func (n *Node) writeAttrs(b *strings.Builder) {
	if len(n.Attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s, ok := AttrString(n.Attrs[k])
		if !ok {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(k)
		if s == "" && isBooleanAttr(k) {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(escapeAttr(s))
		b.WriteByte('"')
	}
}
