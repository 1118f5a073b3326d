package server

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/lattice-dev/lattice/pkg/backend/memdom"
	"github.com/lattice-dev/lattice/pkg/protocol"
	"github.com/lattice-dev/lattice/pkg/runtime"
)

// WireBackend implements runtime.Backend for remote clients. It keeps
// the rendered tree in a memdom.Document as the server-side source of
// truth, assigns a wire ID to every created node, and records each
// mutation as a protocol.Patch. Event handler funcs never cross the
// wire; they are kept in a registry keyed by node ID and event name,
// and the client is told to listen via OpListen.
//
// A WireBackend is not safe for concurrent use. The owning Session
// serializes all access through its event loop.
type WireBackend struct {
	doc       *memdom.Document
	ids       map[*memdom.Node]uint64
	nextID    uint64
	patches   []protocol.Patch
	listeners map[uint64]map[string]any
}

var _ runtime.Backend = (*WireBackend)(nil)

// NewWireBackend returns a backend whose document root has wire ID 0,
// the client's mount container.
func NewWireBackend() *WireBackend {
	doc := memdom.New()
	wb := &WireBackend{
		doc:       doc,
		ids:       make(map[*memdom.Node]uint64),
		listeners: make(map[uint64]map[string]any),
	}
	wb.ids[doc.Root()] = 0
	return wb
}

// Doc returns the mirrored document, used for server-side HTML.
func (wb *WireBackend) Doc() *memdom.Document { return wb.doc }

// Root returns the document root, the node to mount apps on.
func (wb *WireBackend) Root() runtime.Node { return wb.doc.Root() }

// Drain returns the patches recorded since the last drain.
func (wb *WireBackend) Drain() []protocol.Patch {
	out := wb.patches
	wb.patches = nil
	return out
}

// HandlerFor returns the handler registered for an event on a node,
// or nil.
func (wb *WireBackend) HandlerFor(node uint64, event string) any {
	return wb.listeners[node][event]
}

// NodeID returns the wire ID assigned to a node.
func (wb *WireBackend) NodeID(node runtime.Node) uint64 {
	return wb.ids[node.(*memdom.Node)]
}

func (wb *WireBackend) assign(node runtime.Node) uint64 {
	wb.nextID++
	wb.ids[node.(*memdom.Node)] = wb.nextID
	return wb.nextID
}

func (wb *WireBackend) idOf(node runtime.Node) uint64 {
	if node == nil {
		return 0
	}
	return wb.ids[node.(*memdom.Node)]
}

func (wb *WireBackend) record(p protocol.Patch) {
	wb.patches = append(wb.patches, p)
}

func (wb *WireBackend) CreateElement(tag string) runtime.Node {
	n := wb.doc.CreateElement(tag)
	wb.record(protocol.Patch{Op: protocol.OpCreateElement, Node: wb.assign(n), Tag: tag})
	return n
}

func (wb *WireBackend) CreateText(text string) runtime.Node {
	n := wb.doc.CreateText(text)
	wb.record(protocol.Patch{Op: protocol.OpCreateText, Node: wb.assign(n), Value: text})
	return n
}

func (wb *WireBackend) CreateComment(text string) runtime.Node {
	n := wb.doc.CreateComment(text)
	wb.record(protocol.Patch{Op: protocol.OpCreateComment, Node: wb.assign(n), Value: text})
	return n
}

func (wb *WireBackend) SetText(node runtime.Node, text string) {
	wb.doc.SetText(node, text)
	wb.record(protocol.Patch{Op: protocol.OpSetText, Node: wb.idOf(node), Value: text})
}

func (wb *WireBackend) SetElementText(el runtime.Node, text string) {
	// Replaced children are gone on both sides; the client drops them
	// with the same single op.
	for _, child := range el.(*memdom.Node).Children() {
		wb.forget(child)
	}
	wb.doc.SetElementText(el, text)
	wb.record(protocol.Patch{Op: protocol.OpSetElementText, Node: wb.idOf(el), Value: text})
}

func (wb *WireBackend) PatchProp(el runtime.Node, key string, prev, next any) {
	id := wb.idOf(el)
	if strings.HasPrefix(key, "on") && (isFuncValue(next) || (next == nil && isFuncValue(prev))) {
		wb.patchListener(id, eventNameOf(key), next)
		wb.doc.PatchProp(el, key, prev, next)
		return
	}
	wb.doc.PatchProp(el, key, prev, next)
	s, ok := memdom.AttrString(next)
	if ok {
		wb.record(protocol.Patch{Op: protocol.OpSetAttr, Node: id, Key: key, Value: s})
		return
	}
	if _, had := memdom.AttrString(prev); had {
		wb.record(protocol.Patch{Op: protocol.OpRemoveAttr, Node: id, Key: key})
	}
}

func (wb *WireBackend) patchListener(id uint64, event string, handler any) {
	reg := wb.listeners[id]
	if handler == nil {
		if reg != nil {
			delete(reg, event)
			wb.record(protocol.Patch{Op: protocol.OpUnlisten, Node: id, Key: event})
		}
		return
	}
	if reg == nil {
		reg = make(map[string]any)
		wb.listeners[id] = reg
	}
	if _, exists := reg[event]; !exists {
		wb.record(protocol.Patch{Op: protocol.OpListen, Node: id, Key: event})
	}
	reg[event] = handler
}

func (wb *WireBackend) Insert(node, parent, anchor runtime.Node) {
	wb.doc.Insert(node, parent, anchor)
	wb.record(protocol.Patch{
		Op:     protocol.OpInsert,
		Node:   wb.idOf(node),
		Parent: wb.idOf(parent),
		Anchor: wb.idOf(anchor),
	})
}

func (wb *WireBackend) Remove(node runtime.Node) {
	id := wb.idOf(node)
	wb.doc.Remove(node)
	wb.forget(node.(*memdom.Node))
	wb.record(protocol.Patch{Op: protocol.OpRemove, Node: id})
}

// forget releases the IDs and listeners of a detached subtree.
func (wb *WireBackend) forget(n *memdom.Node) {
	if id, ok := wb.ids[n]; ok {
		delete(wb.listeners, id)
		delete(wb.ids, n)
	}
	for _, child := range n.Children() {
		wb.forget(child)
	}
}

func (wb *WireBackend) Parent(node runtime.Node) runtime.Node {
	return wb.doc.Parent(node)
}

func (wb *WireBackend) NextSibling(node runtime.Node) runtime.Node {
	return wb.doc.NextSibling(node)
}

func isFuncValue(v any) bool {
	if v == nil {
		return false
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}

// eventNameOf maps a handler prop key like "onClick" to its wire
// event name "click".
func eventNameOf(key string) string {
	name := strings.TrimPrefix(key, "on")
	if name == "" {
		return key
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
