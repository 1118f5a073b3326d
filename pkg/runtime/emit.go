package runtime

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lattice-dev/lattice/pkg/reactive"
)

// normalizeEmits digests a Component.Emits declaration into a validator
// map. A nil validator means "declared, unvalidated".
func normalizeEmits(raw any) map[string]func(...any) error {
	switch decl := raw.(type) {
	case nil:
		return nil
	case []string:
		out := make(map[string]func(...any) error, len(decl))
		for _, name := range decl {
			out[name] = nil
		}
		return out
	case map[string]func(...any) error:
		return decl
	default:
		panic(fmt.Sprintf("unsupported emits declaration type %T", raw))
	}
}

// emit dispatches a component event to the handler prop the parent
// passed ("change" looks up "onChange"). Handlers run under the event
// handler error phase. Once-style handlers ("onChangeOnce") fire a
// single time per mount.
func emit(inst *ComponentInstance, event string, args ...any) {
	if inst.isUnmounted {
		return
	}
	if inst.emitsOptions != nil {
		validator, declared := inst.emitsOptions[event]
		if !declared {
			if inst.app != nil && inst.app.dev {
				inst.app.logger.Warn("emitted undeclared event",
					"component", inst.Name(), "event", event)
			}
		} else if validator != nil {
			if err := validator(args...); err != nil {
				handleError(fmt.Errorf("event %q payload rejected: %w", event, err), inst, PhaseEventHandler)
				return
			}
		}
	}

	handlerKey := toHandlerKey(event)
	raw := inst.vnode.Props
	handler := raw[handlerKey]
	onceKey := handlerKey + "Once"
	if once, ok := raw[onceKey]; ok {
		if inst.emitted == nil {
			inst.emitted = map[string]bool{}
		}
		if !inst.emitted[onceKey] {
			inst.emitted[onceKey] = true
			invokeHandler(inst, event, once, args)
		}
	}
	if handler != nil {
		invokeHandler(inst, event, handler, args)
	}
}

// invokeHandler calls a listener prop. Handlers are plain funcs taking
// zero or variadic any args, or an EventHandler.
func invokeHandler(inst *ComponentInstance, event string, handler any, args []any) {
	callWithErrorHandling(inst, PhaseEventHandler, func() error {
		switch h := handler.(type) {
		case func():
			reactive.WithCtx(inst.parentOrSelf(), h)
		case func(...any):
			reactive.WithCtx(inst.parentOrSelf(), func() { h(args...) })
		case func(any):
			var first any
			if len(args) > 0 {
				first = args[0]
			}
			reactive.WithCtx(inst.parentOrSelf(), func() { h(first) })
		case func(...any) error:
			var err error
			reactive.WithCtx(inst.parentOrSelf(), func() { err = h(args...) })
			return err
		default:
			return fmt.Errorf("unsupported handler type %T for event %q", handler, event)
		}
		return nil
	})
}

func (i *ComponentInstance) parentOrSelf() *ComponentInstance {
	if i.parent != nil {
		return i.parent
	}
	return i
}

// isEmitListener reports whether a raw prop key is an "onEvent" handler
// for a declared emit of inst.
func isEmitListener(inst *ComponentInstance, key string) bool {
	if inst.emitsOptions == nil || !strings.HasPrefix(key, "on") || len(key) < 3 {
		return false
	}
	event := strings.TrimSuffix(key[2:], "Once")
	event = string(unicode.ToLower(rune(event[0]))) + event[1:]
	_, ok := inst.emitsOptions[event]
	return ok
}

func mergeEmitsDecl(dst, src any) any {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	out := map[string]func(...any) error{}
	for name, v := range normalizeEmits(dst) {
		out[name] = v
	}
	for name, v := range normalizeEmits(src) {
		out[name] = v
	}
	return out
}

// toHandlerKey converts an event name to its listener prop key:
// "change" becomes "onChange", "update:value" becomes "onUpdate:value".
func toHandlerKey(event string) string {
	if event == "" {
		return "on"
	}
	return "on" + string(unicode.ToUpper(rune(event[0]))) + event[1:]
}

// hyphenate converts a camelCase key to its kebab-case attribute form,
// "isActive" to "is-active". Lowercase single-word keys pass through.
func hyphenate(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
