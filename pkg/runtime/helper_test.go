package runtime_test

import (
	"testing"

	"github.com/lattice-dev/lattice/pkg/backend/memdom"
	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// mountApp mounts root into a fresh in-memory document and fails the
// test on mount errors.
func mountApp(t *testing.T, root *runtime.Component, props vdom.Props, opts ...runtime.AppOption) (*memdom.Document, *runtime.App) {
	t.Helper()
	d := memdom.New()
	app := runtime.NewRenderer(d).CreateApp(root, props, opts...)
	if _, err := app.Mount(d.Root()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	return d, app
}

// renderOnly wraps a bare render closure in a root component.
func renderOnly(render func() *vdom.VNode) *runtime.Component {
	return &runtime.Component{
		Name: "Root",
		Setup: func(*runtime.SetupContext) (any, error) {
			return runtime.RenderFunc(render), nil
		},
	}
}

func wantHTML(t *testing.T, d *memdom.Document, want string) {
	t.Helper()
	if got := d.HTML(); got != want {
		t.Errorf("got HTML %q, want %q", got, want)
	}
}
