package runtime

import (
	"testing"

	"github.com/lattice-dev/lattice/pkg/vdom"
)

func TestNormalizePropsStringList(t *testing.T) {
	np := normalizeProps([]string{"label", "count"})
	if len(np.decl) != 2 {
		t.Fatalf("got %d declared props, want 2", len(np.decl))
	}
	if _, ok := np.decl["label"]; !ok {
		t.Errorf("label not declared")
	}
	if len(np.needCast) != 0 {
		t.Errorf("string list props need no casting, got %v", np.needCast)
	}
}

func TestNormalizePropsBoolOrdering(t *testing.T) {
	np := normalizeProps(PropsSpec{
		"boolFirst":  {Type: []PropType{BoolProp, StringProp}},
		"stringLead": {Type: []PropType{StringProp, BoolProp}},
	})
	if !np.decl["boolFirst"].boolFirst {
		t.Errorf("Bool before String should set boolFirst")
	}
	if np.decl["stringLead"].boolFirst {
		t.Errorf("String before Bool should clear boolFirst")
	}
}

func testInstance(spec any) *ComponentInstance {
	return &ComponentInstance{propsOptions: normalizeProps(spec)}
}

func TestCastPropDefaultValue(t *testing.T) {
	inst := testInstance(PropsSpec{
		"limit": {Type: []PropType{NumberProp}, Default: 10},
	})
	got := castProp(inst, "limit", nil, vdom.Props{})
	if got != 10 {
		t.Errorf("got %v, want 10", got)
	}
	// A passed value wins over the default.
	got = castProp(inst, "limit", 3, vdom.Props{"limit": 3})
	if got != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestCastPropDefaultFactoryNotShared(t *testing.T) {
	spec := PropsSpec{
		"options": {Type: []PropType{ObjectProp}, Default: func() any { return map[string]any{} }},
	}
	a := castProp(testInstance(spec), "options", nil, vdom.Props{})
	b := castProp(testInstance(spec), "options", nil, vdom.Props{})
	am, ok1 := a.(map[string]any)
	bm, ok2 := b.(map[string]any)
	if !ok1 || !ok2 {
		t.Fatalf("factory default not invoked: %T %T", a, b)
	}
	am["mine"] = true
	if len(bm) != 0 {
		t.Errorf("factory default shared between instances")
	}
}

func TestCastPropDefaultFactoryCachedPerInstance(t *testing.T) {
	runs := 0
	inst := testInstance(PropsSpec{
		"options": {Type: []PropType{ObjectProp}, Default: func() any {
			runs++
			return map[string]any{}
		}},
	})
	a := castProp(inst, "options", nil, vdom.Props{})
	b := castProp(inst, "options", nil, vdom.Props{})
	if runs != 1 {
		t.Fatalf("factory ran %d times for one instance, want 1", runs)
	}
	// Identity must be stable: both resolutions see the same map.
	a.(map[string]any)["k"] = 1
	if b.(map[string]any)["k"] != 1 {
		t.Errorf("absent key resolved to different default values")
	}
}

func TestCastPropAbsentBoolDefaultsFalse(t *testing.T) {
	inst := testInstance(PropsSpec{
		"active": {Type: []PropType{BoolProp}},
	})
	got := castProp(inst, "active", nil, vdom.Props{})
	if got != false {
		t.Errorf("got %v, want false", got)
	}
}

func TestCastPropEmptyStringCastsTrueWhenBoolLeads(t *testing.T) {
	inst := testInstance(PropsSpec{
		"active": {Type: []PropType{BoolProp, StringProp}},
		"title":  {Type: []PropType{StringProp, BoolProp}},
	})
	if got := castProp(inst, "active", "", vdom.Props{"active": ""}); got != true {
		t.Errorf("empty string with Bool leading: got %v, want true", got)
	}
	if got := castProp(inst, "title", "", vdom.Props{"title": ""}); got != "" {
		t.Errorf("empty string with String leading: got %v, want empty string", got)
	}
}

func TestCastPropHyphenatedNameCastsTrue(t *testing.T) {
	inst := testInstance(PropsSpec{
		"isActive": {Type: []PropType{BoolProp, StringProp}},
	})
	if got := castProp(inst, "isActive", "is-active", vdom.Props{"isActive": "is-active"}); got != true {
		t.Errorf("hyphenated own name: got %v, want true", got)
	}
	if got := castProp(inst, "isActive", "yes", vdom.Props{"isActive": "yes"}); got != "yes" {
		t.Errorf("other string value: got %v, want %q", got, "yes")
	}
}

func TestHyphenate(t *testing.T) {
	cases := map[string]string{
		"active":       "active",
		"isActive":     "is-active",
		"ariaLabelFor": "aria-label-for",
	}
	for key, want := range cases {
		if got := hyphenate(key); got != want {
			t.Errorf("hyphenate(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestMergePropsDecl(t *testing.T) {
	base := PropsSpec{"a": {Required: true}}
	merged := mergePropsDecl([]string{"b"}, base)
	spec, ok := merged.(PropsSpec)
	if !ok {
		t.Fatalf("got %T, want PropsSpec", merged)
	}
	if !spec["a"].Required {
		t.Errorf("later declaration should win for key a")
	}
	if _, declared := spec["b"]; !declared {
		t.Errorf("key b lost in merge")
	}
}

func TestShouldUpdateComponentDynamicProps(t *testing.T) {
	def := &Component{}
	prev := vdom.New(def, vdom.Props{"count": 1, "label": "x"})
	next := vdom.New(def, vdom.Props{"count": 1, "label": "x"}).
		WithFlags(vdom.FlagProps, "count")

	if shouldUpdateComponent(prev, next) {
		t.Errorf("unchanged dynamic prop should not force an update")
	}

	changed := vdom.New(def, vdom.Props{"count": 2, "label": "x"}).
		WithFlags(vdom.FlagProps, "count")
	if !shouldUpdateComponent(prev, changed) {
		t.Errorf("changed dynamic prop should force an update")
	}
}

func TestShouldUpdateComponentFullDiff(t *testing.T) {
	def := &Component{}
	prev := vdom.New(def, vdom.Props{"a": 1})
	same := vdom.New(def, vdom.Props{"a": 1})
	diff := vdom.New(def, vdom.Props{"a": 2})

	if shouldUpdateComponent(prev, same) {
		t.Errorf("identical props should not force an update")
	}
	if !shouldUpdateComponent(prev, diff) {
		t.Errorf("changed props should force an update")
	}
}

func TestToHandlerKey(t *testing.T) {
	cases := map[string]string{
		"change":       "onChange",
		"update:value": "onUpdate:value",
		"x":            "onX",
	}
	for event, want := range cases {
		if got := toHandlerKey(event); got != want {
			t.Errorf("toHandlerKey(%q) = %q, want %q", event, got, want)
		}
	}
}
