package server_test

import (
	"strconv"
	"testing"

	"github.com/lattice-dev/lattice/pkg/backend/memdom"
	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/server"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// counterApp is the canonical interactive fixture: a count display and
// a button whose click handler increments it.
func counterApp() *runtime.Component {
	return &runtime.Component{
		Name: "Counter",
		Setup: func(*runtime.SetupContext) (any, error) {
			count := reactive.NewRef(0)
			return runtime.RenderFunc(func() *vdom.VNode {
				return vdom.New("div", nil,
					vdom.New("span", nil, strconv.Itoa(count.Get())),
					vdom.New("button", vdom.Props{"onClick": func() {
						count.Set(count.Get() + 1)
					}}, "+"),
				)
			}), nil
		},
	}
}

func newTestSession(t *testing.T, root *runtime.Component) *server.Session {
	t.Helper()
	s, err := server.NewSession("test-session", root, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// findByTag returns the first element with the given tag in the
// mirrored document, depth first.
func findByTag(n *memdom.Node, tag string) *memdom.Node {
	if n.Kind == memdom.Element && n.Tag == tag {
		return n
	}
	for _, child := range n.Children() {
		if found := findByTag(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeID(t *testing.T, wb *server.WireBackend, tag string) uint64 {
	t.Helper()
	n := findByTag(wb.Doc().Root(), tag)
	if n == nil {
		t.Fatalf("no <%s> in document %q", tag, wb.Doc().HTML())
	}
	return wb.NodeID(n)
}
