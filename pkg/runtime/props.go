package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lattice-dev/lattice/pkg/reactive"
	"github.com/lattice-dev/lattice/pkg/vdom"
)

// PropType constrains the values accepted for a declared prop.
type PropType int

const (
	AnyProp PropType = iota
	BoolProp
	StringProp
	NumberProp
	ObjectProp
	ListProp
	FuncProp
)

// PropOptions declares a single prop.
type PropOptions struct {
	// Type lists the accepted types. Order matters for casting: a prop
	// declared Bool before String receives true for an empty-string
	// attribute value, the way HTML boolean attributes behave.
	Type []PropType
	// Required props warn in dev mode when absent.
	Required bool
	// Default is the value used when the parent passes nothing. A
	// func() any default is a factory, called per instance so object
	// defaults are never shared.
	Default any
	// Validator runs in dev mode against the resolved value.
	Validator func(value any) error
}

// PropsSpec is the full-form props declaration.
type PropsSpec map[string]PropOptions

type normalizedProp struct {
	PropOptions
	boolFirst bool // Bool appears before String in Type
	hasBool   bool
}

type normalizedProps struct {
	decl map[string]normalizedProp
	// needCast lists keys that need default or boolean casting, so the
	// fast update path can skip the rest.
	needCast []string
}

// normalizeProps digests a Component.Props declaration. Results are
// cached per definition on the app (see App.normalizedPropsFor).
func normalizeProps(raw any) *normalizedProps {
	np := &normalizedProps{decl: map[string]normalizedProp{}}
	switch decl := raw.(type) {
	case nil:
	case []string:
		for _, name := range decl {
			np.decl[name] = normalizedProp{}
		}
	case PropsSpec:
		for name, opts := range decl {
			p := normalizedProp{PropOptions: opts}
			for i, t := range opts.Type {
				if t == BoolProp {
					p.hasBool = true
					p.boolFirst = !typeBefore(opts.Type, StringProp, i)
				}
			}
			np.decl[name] = p
			if opts.Default != nil || p.hasBool {
				np.needCast = append(np.needCast, name)
			}
		}
	default:
		panic(fmt.Sprintf("unsupported props declaration type %T", raw))
	}
	return np
}

// typeBefore reports whether want occurs in types before index i.
func typeBefore(types []PropType, want PropType, i int) bool {
	for j := 0; j < i; j++ {
		if types[j] == want {
			return true
		}
	}
	return false
}

// initProps performs the first props resolution: declared keys become
// reactive props, the rest become attrs. Event-handler props ("on"
// prefix) never fall through as attrs unless declared.
func initProps(inst *ComponentInstance, raw vdom.Props) {
	props := map[string]any{}
	attrs := vdom.Props{}
	splitProps(inst, raw, props, attrs)
	applyCasts(inst, props, raw)
	if inst.app != nil && inst.app.dev {
		validateProps(inst, props)
	}
	inst.props = reactive.NewObject(props)
	inst.attrs = attrs
}

// updateProps re-resolves props when the parent re-renders the component
// vnode. Declared prop changes go through the reactive props object, so
// any child effect reading them re-runs; attr changes mark the instance
// for an attr-only patch.
func updateProps(inst *ComponentInstance, next *vdom.VNode) {
	raw := next.Props
	decl := inst.propsOptions.decl

	if next.PatchFlag.Has(vdom.FlagProps) && !next.PatchFlag.Has(vdom.FlagFullProps) && len(next.DynamicProps) > 0 {
		// Optimized path: only the compiler-declared dynamic keys can
		// have changed.
		reactive.Batch(func() {
			for _, key := range next.DynamicProps {
				value := raw[key]
				if _, declared := decl[key]; declared {
					inst.props.Set(key, castProp(inst, key, value, raw))
				} else if !strings.HasPrefix(key, "on") {
					inst.attrs[key] = value
				}
			}
		})
		return
	}

	props := map[string]any{}
	attrs := vdom.Props{}
	splitProps(inst, raw, props, attrs)
	applyCasts(inst, props, raw)
	if inst.app != nil && inst.app.dev {
		validateProps(inst, props)
	}
	inst.props.Replace(props)
	inst.attrs = attrs
}

func splitProps(inst *ComponentInstance, raw vdom.Props, props map[string]any, attrs vdom.Props) {
	decl := inst.propsOptions.decl
	for key, value := range raw {
		if key == "key" || key == "ref" {
			continue
		}
		if _, declared := decl[key]; declared {
			props[key] = value
			continue
		}
		if isEmitListener(inst, key) {
			// Declared emit listeners are consumed by Emit, not spread
			// as attrs.
			continue
		}
		attrs[key] = value
	}
}

// applyCasts fills defaults and casts boolean props for declared keys the
// parent omitted or passed as empty-string attributes.
func applyCasts(inst *ComponentInstance, props map[string]any, raw vdom.Props) {
	for _, key := range inst.propsOptions.needCast {
		props[key] = castProp(inst, key, props[key], raw)
	}
}

func castProp(inst *ComponentInstance, key string, value any, raw vdom.Props) any {
	opt, ok := inst.propsOptions.decl[key]
	if !ok {
		return value
	}
	_, present := raw[key]
	if !present && value == nil {
		if opt.Default != nil {
			if factory, isFactory := opt.Default.(func() any); isFactory {
				if cached, has := inst.defaults[key]; has {
					return cached
				}
				var out any
				reactive.Untracked(func() {
					out = factory()
				})
				if inst.defaults == nil {
					inst.defaults = map[string]any{}
				}
				inst.defaults[key] = out
				return out
			}
			return opt.Default
		}
		if opt.hasBool {
			return false
		}
		return nil
	}
	if opt.hasBool {
		if value == nil {
			return false
		}
		if s, isStr := value.(string); isStr && (s == "" || s == hyphenate(key)) && opt.boolFirst {
			return true
		}
	}
	return value
}

// validateProps runs dev-mode checks: required presence, type match, and
// custom validators. Failures warn, they never abort the render.
func validateProps(inst *ComponentInstance, props map[string]any) {
	for key, opt := range inst.propsOptions.decl {
		value, present := props[key]
		if opt.Required && (!present || value == nil) {
			inst.app.logger.Warn("missing required prop",
				"component", inst.Name(), "prop", key)
			continue
		}
		if !present || value == nil {
			continue
		}
		if len(opt.Type) > 0 && !matchesPropType(value, opt.Type) {
			inst.app.logger.Warn("invalid prop type",
				"component", inst.Name(), "prop", key,
				"got", fmt.Sprintf("%T", value))
		}
		if opt.Validator != nil {
			if err := opt.Validator(value); err != nil {
				inst.app.logger.Warn("prop validator failed",
					"component", inst.Name(), "prop", key, "err", err)
			}
		}
	}
}

func matchesPropType(value any, types []PropType) bool {
	for _, t := range types {
		switch t {
		case AnyProp:
			return true
		case BoolProp:
			if _, ok := value.(bool); ok {
				return true
			}
		case StringProp:
			if _, ok := value.(string); ok {
				return true
			}
		case NumberProp:
			switch value.(type) {
			case int, int8, int16, int32, int64,
				uint, uint8, uint16, uint32, uint64,
				float32, float64:
				return true
			}
		case ObjectProp:
			switch value.(type) {
			case map[string]any, *reactive.Object:
				return true
			}
		case ListProp:
			switch value.(type) {
			case []any, *reactive.List:
				return true
			}
		case FuncProp:
			if value != nil && reflect.ValueOf(value).Kind() == reflect.Func {
				return true
			}
		}
	}
	return false
}

func mergePropsDecl(dst, src any) any {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	out := PropsSpec{}
	for _, decl := range []any{dst, src} {
		switch d := decl.(type) {
		case []string:
			for _, name := range d {
				if _, ok := out[name]; !ok {
					out[name] = PropOptions{}
				}
			}
		case PropsSpec:
			for name, opts := range d {
				out[name] = opts
			}
		}
	}
	return out
}
