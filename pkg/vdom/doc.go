// Package vdom provides the virtual node tree for Lattice.
//
// A VNode is an immutable-per-render description of one unit of output:
// an element, a component occurrence, text, a comment, or a fragment.
// Render functions produce VNode trees; the runtime's renderer reconciles
// the previous tree with the new one and applies minimal backend
// mutations.
//
// # Building trees
//
// Nodes are created with New and the helpers:
//
//	New("div", vdom.Props{"class": "card"},
//	    New("h1", nil, "Title"),
//	    New("p", nil, "Content"),
//	)
//
// A node's shape (element, component, text children, array children, slot
// children) is classified once at creation into a bitmask used for
// renderer dispatch.
//
// # Keys
//
// A node may carry a stable identity key. Sibling lists with keys are
// reconciled by key across reorders, so backend nodes move instead of
// being destroyed and recreated.
//
// # Patch flags
//
// An upstream template compiler may attach patch-flag hints marking which
// parts of a subtree can change (text only, class only, a stable dynamic
// children list, ...). The renderer uses these as fast paths; trees
// without any hints are diffed fully and correctly.
package vdom
