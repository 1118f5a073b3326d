package main

import (
	"fmt"
	"strconv"

	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/runtime"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// todoItem renders one list entry and asks its parent to remove it.
var todoItem = &runtime.Component{
	Name:  "TodoItem",
	Props: []string{"label"},
	Emits: []string{"remove"},
	Setup: func(ctx *runtime.SetupContext) (any, error) {
		return runtime.RenderFunc(func() *vdom.VNode {
			label, _ := ctx.Props().Get("label").(string)
			return vdom.New("li", nil,
				vdom.New("span", nil, label),
				vdom.New("button", vdom.Props{
					"class":   "remove",
					"onClick": func() { ctx.Emit("remove") },
				}, "x"),
			)
		}), nil
	},
}

type todo struct {
	id    int
	label string
}

// demoApp is the sample application served by `lattice serve`: a
// counter plus a keyed todo list, enough to exercise state updates,
// child props, emits, and list reconciliation end to end.
func demoApp() *runtime.Component {
	return &runtime.Component{
		Name: "Demo",
		Setup: func(*runtime.SetupContext) (any, error) {
			count := reactive.NewRef(0)
			todos := reactive.NewRef([]todo{
				{id: 1, label: "learn lattice"},
				{id: 2, label: "ship something"},
			})
			nextID := 3

			addTodo := func() {
				items := todos.Get()
				todos.Set(append(items, todo{id: nextID, label: fmt.Sprintf("todo #%d", nextID)}))
				nextID++
			}
			removeTodo := func(id int) func(...any) {
				return func(...any) {
					items := todos.Get()
					kept := make([]todo, 0, len(items))
					for _, item := range items {
						if item.id != id {
							kept = append(kept, item)
						}
					}
					todos.Set(kept)
				}
			}

			return runtime.RenderFunc(func() *vdom.VNode {
				items := todos.Get()
				children := make([]any, 0, len(items))
				for _, item := range items {
					children = append(children, vdom.New(todoItem, vdom.Props{
						"key":      strconv.Itoa(item.id),
						"label":    item.label,
						"onRemove": removeTodo(item.id),
					}))
				}
				return vdom.New("div", vdom.Props{"class": "demo"},
					vdom.New("section", nil,
						vdom.New("h1", nil, "Counter"),
						vdom.New("p", nil, strconv.Itoa(count.Get())),
						vdom.New("button", vdom.Props{"onClick": func() {
							count.Set(count.Get() + 1)
						}}, "+1"),
					),
					vdom.New("section", nil,
						vdom.New("h1", nil, "Todos"),
						vdom.New("ul", vdom.Props{}, children...),
						vdom.New("button", vdom.Props{"onClick": addTodo}, "add"),
					),
				)
			}), nil
		},
	}
}
