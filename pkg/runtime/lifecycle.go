package runtime

type hookPhase int

const (
	hookBeforeMount hookPhase = iota
	hookMounted
	hookBeforeUpdate
	hookUpdated
	hookBeforeUnmount
	hookUnmounted
)

func (p hookPhase) String() string {
	switch p {
	case hookBeforeMount:
		return "beforeMount"
	case hookMounted:
		return "mounted"
	case hookBeforeUpdate:
		return "beforeUpdate"
	case hookUpdated:
		return "updated"
	case hookBeforeUnmount:
		return "beforeUnmount"
	case hookUnmounted:
		return "unmounted"
	}
	return "unknown"
}

// registerHook appends fn to the current instance's hook list. Calls
// outside setup are ignored with a dev warning; there is no instance to
// attach to.
func registerHook(phase hookPhase, fn func()) {
	inst := CurrentInstance()
	if inst == nil {
		return
	}
	if inst.isUnmounted {
		return
	}
	inst.hooks[phase] = append(inst.hooks[phase], fn)
}

// OnBeforeMount registers fn to run before the instance's first patch.
func OnBeforeMount(fn func()) { registerHook(hookBeforeMount, fn) }

// OnMounted registers fn to run after the instance's first patch has
// been applied to the backend. Hooks run child before parent.
func OnMounted(fn func()) { registerHook(hookMounted, fn) }

// OnBeforeUpdate registers fn to run before each re-render patch.
func OnBeforeUpdate(fn func()) { registerHook(hookBeforeUpdate, fn) }

// OnUpdated registers fn to run after each re-render patch lands.
func OnUpdated(fn func()) { registerHook(hookUpdated, fn) }

// OnBeforeUnmount registers fn to run before the instance is removed.
func OnBeforeUnmount(fn func()) { registerHook(hookBeforeUnmount, fn) }

// OnUnmounted registers fn to run after the instance and its subtree
// have been removed and its reactive scope disposed.
func OnUnmounted(fn func()) { registerHook(hookUnmounted, fn) }

// OnErrorCaptured registers an error-capture hook on the current
// instance. Errors from descendant setup, render, watchers, lifecycle
// hooks, and event handlers pass through it; return true to mark the
// error handled and stop propagation.
func OnErrorCaptured(fn ErrorCaptureFunc) {
	inst := CurrentInstance()
	if inst == nil {
		return
	}
	inst.errCapHooks = append(inst.errCapHooks, fn)
}

// invokeHooks runs the instance's hooks for phase, each under error
// handling so one failing hook does not skip the rest.
func invokeHooks(inst *ComponentInstance, phase hookPhase) {
	for _, fn := range inst.hooks[phase] {
		hook := fn
		callWithErrorHandling(inst, PhaseHook, func() error {
			hook()
			return nil
		})
	}
}
