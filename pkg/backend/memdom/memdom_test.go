package memdom

import (
	"strings"
	"testing"
)

func TestInsertAppendAndAnchor(t *testing.T) {
	d := New()
	parent := d.CreateElement("ul").(*Node)
	d.Insert(parent, d.Root(), nil)

	a := d.CreateElement("li").(*Node)
	c := d.CreateElement("li").(*Node)
	d.Insert(a, parent, nil)
	d.Insert(c, parent, nil)

	b := d.CreateElement("li").(*Node)
	d.Insert(b, parent, c)

	kids := parent.Children()
	if len(kids) != 3 {
		t.Fatalf("got %d children, want 3", len(kids))
	}
	if kids[0] != a || kids[1] != b || kids[2] != c {
		t.Errorf("children out of order after anchored insert")
	}
}

func TestInsertMovesNodeBetweenParents(t *testing.T) {
	d := New()
	p1 := d.CreateElement("div").(*Node)
	p2 := d.CreateElement("div").(*Node)
	d.Insert(p1, d.Root(), nil)
	d.Insert(p2, d.Root(), nil)

	n := d.CreateText("x").(*Node)
	d.Insert(n, p1, nil)
	d.Insert(n, p2, nil)

	if len(p1.Children()) != 0 {
		t.Errorf("node still attached to old parent")
	}
	if len(p2.Children()) != 1 || p2.Children()[0] != n {
		t.Errorf("node not attached to new parent")
	}
	if n.Parent() != p2 {
		t.Errorf("parent pointer not updated")
	}
}

func TestNextSibling(t *testing.T) {
	d := New()
	a := d.CreateText("a")
	b := d.CreateText("b")
	d.Insert(a, d.Root(), nil)
	d.Insert(b, d.Root(), nil)

	if got := d.NextSibling(a); got != b {
		t.Errorf("NextSibling(a) = %v, want b", got)
	}
	if got := d.NextSibling(b); got != nil {
		t.Errorf("NextSibling(b) = %v, want nil", got)
	}
}

func TestSetElementTextReplacesChildren(t *testing.T) {
	d := New()
	el := d.CreateElement("p").(*Node)
	d.Insert(el, d.Root(), nil)
	d.Insert(d.CreateElement("span"), el, nil)
	d.Insert(d.CreateElement("span"), el, nil)

	d.SetElementText(el, "hello")

	if len(el.Children()) != 1 {
		t.Fatalf("got %d children, want 1", len(el.Children()))
	}
	if el.Children()[0].Text != "hello" {
		t.Errorf("got text %q, want %q", el.Children()[0].Text, "hello")
	}
}

func TestPatchPropSetAndRemove(t *testing.T) {
	d := New()
	el := d.CreateElement("input").(*Node)

	d.PatchProp(el, "value", nil, "abc")
	if el.Attrs["value"] != "abc" {
		t.Errorf("attr not set")
	}
	d.PatchProp(el, "value", "abc", nil)
	if _, ok := el.Attrs["value"]; ok {
		t.Errorf("attr not removed")
	}
}

func TestCounters(t *testing.T) {
	d := New()
	el := d.CreateElement("div")
	d.Insert(el, d.Root(), nil)
	d.Remove(el)

	c := d.Counters()
	if c.CreateElement != 1 || c.Insert != 1 || c.Remove != 1 {
		t.Errorf("unexpected counters %+v", c)
	}

	d.ResetCounters()
	if d.Counters() != (Counters{}) {
		t.Errorf("counters not reset")
	}
}

func TestHTMLSerialization(t *testing.T) {
	d := New()
	div := d.CreateElement("div").(*Node)
	d.PatchProp(div, "class", nil, "box")
	d.PatchProp(div, "id", nil, "main")
	d.Insert(div, d.Root(), nil)
	d.Insert(d.CreateText("hi"), div, nil)

	got := d.HTML()
	want := `<div class="box" id="main">hi</div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHTMLEscaping(t *testing.T) {
	d := New()
	p := d.CreateElement("p").(*Node)
	d.PatchProp(p, "title", nil, `a"b`)
	d.Insert(p, d.Root(), nil)
	d.Insert(d.CreateText("<script>alert('x')</script>"), p, nil)

	html := d.HTML()
	if strings.Contains(html, "<script>") {
		t.Errorf("text not escaped: %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("missing escaped tag: %q", html)
	}
	if !strings.Contains(html, `title="a&quot;b"`) {
		t.Errorf("attribute not escaped: %q", html)
	}
}

func TestHTMLVoidElements(t *testing.T) {
	d := New()
	br := d.CreateElement("br")
	d.Insert(br, d.Root(), nil)

	html := d.HTML()
	if strings.Contains(html, "</br>") {
		t.Errorf("void element has closing tag: %q", html)
	}
}

func TestHTMLSkipsEventHandlers(t *testing.T) {
	d := New()
	btn := d.CreateElement("button").(*Node)
	d.PatchProp(btn, "onClick", nil, func() {})
	d.PatchProp(btn, "disabled", nil, true)
	d.Insert(btn, d.Root(), nil)

	html := d.HTML()
	if strings.Contains(html, "onClick") {
		t.Errorf("handler serialized: %q", html)
	}
	if html != "<button disabled></button>" {
		t.Errorf("got %q", html)
	}
}

func TestHTMLStyleMap(t *testing.T) {
	d := New()
	el := d.CreateElement("div").(*Node)
	d.PatchProp(el, "style", nil, map[string]string{"color": "red", "margin": "0"})
	d.Insert(el, d.Root(), nil)

	html := d.HTML()
	if !strings.Contains(html, `style="color: red; margin: 0"`) {
		t.Errorf("style not serialized deterministically: %q", html)
	}
}
