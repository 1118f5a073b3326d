package server_test

import (
	"testing"

	"github.com/lattice-dev/lattice/pkg/protocol"
	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/server"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

func mountOnWire(t *testing.T, root *runtime.Component) (*server.WireBackend, *runtime.App) {
	t.Helper()
	wb := server.NewWireBackend()
	app := runtime.NewRenderer(wb).CreateApp(root, nil)
	if _, err := app.Mount(wb.Root()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	return wb, app
}

func opsOf(patches []protocol.Patch) []protocol.Op {
	ops := make([]protocol.Op, len(patches))
	for i, p := range patches {
		ops[i] = p.Op
	}
	return ops
}

func countOp(patches []protocol.Patch, op protocol.Op) int {
	n := 0
	for _, p := range patches {
		if p.Op == op {
			n++
		}
	}
	return n
}

func TestMountRecordsCreateAndInsert(t *testing.T) {
	wb, _ := mountOnWire(t, counterApp())
	patches := wb.Drain()

	if got := countOp(patches, protocol.OpCreateElement); got != 3 {
		t.Fatalf("got %d creates, want 3: %v", got, opsOf(patches))
	}
	if got := countOp(patches, protocol.OpListen); got != 1 {
		t.Fatalf("got %d listens, want 1: %v", got, opsOf(patches))
	}
	// The outer div attaches to the client mount container, wire ID 0.
	foundRootInsert := false
	for _, p := range patches {
		if p.Op == protocol.OpInsert && p.Parent == 0 {
			foundRootInsert = true
		}
	}
	if !foundRootInsert {
		t.Error("no insert targeting the mount container")
	}
	if got := wb.Doc().HTML(); got != "<div><span>0</span><button>+</button></div>" {
		t.Errorf("unexpected document HTML: %q", got)
	}
}

func TestDrainResets(t *testing.T) {
	wb, _ := mountOnWire(t, counterApp())
	if len(wb.Drain()) == 0 {
		t.Fatal("expected mount patches")
	}
	if got := wb.Drain(); len(got) != 0 {
		t.Fatalf("second drain returned %d patches", len(got))
	}
}

func TestTextUpdateBecomesSetText(t *testing.T) {
	wb, app := mountOnWire(t, counterApp())
	wb.Drain()

	button := nodeID(t, wb, "button")
	handler := wb.HandlerFor(button, "click")
	if handler == nil {
		t.Fatal("no click handler registered")
	}
	handler.(func())()
	app.Flush()

	patches := wb.Drain()
	if len(patches) != 1 || patches[0].Op != protocol.OpSetText {
		t.Fatalf("got %v, want a single SetText", opsOf(patches))
	}
	if patches[0].Value != "1" {
		t.Errorf("got SetText %q, want %q", patches[0].Value, "1")
	}
}

func TestAttrSetAndRemove(t *testing.T) {
	disabled := reactive.NewRef(true)
	wb, app := mountOnWire(t, &runtime.Component{
		Name: "Form",
		Setup: func(*runtime.SetupContext) (any, error) {
			return runtime.RenderFunc(func() *vdom.VNode {
				return vdom.New("button", vdom.Props{"disabled": disabled.Get()}, "go")
			}), nil
		},
	})
	wb.Drain()
	button := nodeID(t, wb, "button")

	disabled.Set(false)
	app.Flush()
	patches := wb.Drain()
	if len(patches) != 1 || patches[0].Op != protocol.OpRemoveAttr {
		t.Fatalf("got %v, want a single RemoveAttr", opsOf(patches))
	}
	if patches[0].Node != button || patches[0].Key != "disabled" {
		t.Errorf("got patch %+v, want disabled removal on node %d", patches[0], button)
	}

	disabled.Set(true)
	app.Flush()
	patches = wb.Drain()
	if len(patches) != 1 || patches[0].Op != protocol.OpSetAttr {
		t.Fatalf("got %v, want a single SetAttr", opsOf(patches))
	}
}

func TestListenerRegisteredOncePerNode(t *testing.T) {
	count := reactive.NewRef(0)
	wb, app := mountOnWire(t, &runtime.Component{
		Name: "Clicker",
		Setup: func(*runtime.SetupContext) (any, error) {
			return runtime.RenderFunc(func() *vdom.VNode {
				// A new handler closure every render must not re-listen.
				return vdom.New("button", vdom.Props{"onClick": func() {
					count.Set(count.Get() + 1)
				}}, count.Get())
			}), nil
		},
	})
	if got := countOp(wb.Drain(), protocol.OpListen); got != 1 {
		t.Fatalf("got %d listens on mount, want 1", got)
	}

	button := nodeID(t, wb, "button")
	wb.HandlerFor(button, "click").(func())()
	app.Flush()
	if got := countOp(wb.Drain(), protocol.OpListen); got != 0 {
		t.Fatalf("re-render emitted %d extra listens", got)
	}
	// The freshest closure is the registered one.
	if wb.HandlerFor(button, "click") == nil {
		t.Fatal("handler lost after re-render")
	}
}

func TestRemoveReleasesListeners(t *testing.T) {
	show := reactive.NewRef(true)
	wb, app := mountOnWire(t, &runtime.Component{
		Name: "Toggle",
		Setup: func(*runtime.SetupContext) (any, error) {
			return runtime.RenderFunc(func() *vdom.VNode {
				if !show.Get() {
					return vdom.New("div", nil)
				}
				return vdom.New("div", nil,
					vdom.New("button", vdom.Props{"onClick": func() {}}, "x"),
				)
			}), nil
		},
	})
	wb.Drain()
	button := nodeID(t, wb, "button")

	show.Set(false)
	app.Flush()
	patches := wb.Drain()
	if got := countOp(patches, protocol.OpRemove); got != 1 {
		t.Fatalf("got %d removes, want 1: %v", got, opsOf(patches))
	}
	if wb.HandlerFor(button, "click") != nil {
		t.Error("listener survived node removal")
	}
}
