package runtime

import (
	"fmt"
	"log/slog"
)

// ErrorPhase names the runtime activity an error escaped from. It is
// carried to error-capture hooks and the app-level handler so they can
// decide how much to trust the failing subtree.
type ErrorPhase string

const (
	PhaseSetup        ErrorPhase = "setup"
	PhaseRender       ErrorPhase = "render"
	PhaseWatcher      ErrorPhase = "watcher"
	PhaseEventHandler ErrorPhase = "event handler"
	PhaseScheduler    ErrorPhase = "scheduler"
	PhaseHook         ErrorPhase = "lifecycle hook"
	PhaseErrorCapture ErrorPhase = "error capture hook"
	PhaseAsyncSetup   ErrorPhase = "async setup"
)

// RuntimeError wraps an error raised inside component code with the
// phase it escaped from and the component it escaped in.
type RuntimeError struct {
	Phase     ErrorPhase
	Component string
	Err       error
}

func (e *RuntimeError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s in component %q: %v", e.Phase, e.Component, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ErrorCaptureFunc is registered via OnErrorCaptured. Returning true
// marks the error handled and stops propagation; returning false passes
// it to the next ancestor capture hook and finally the app handler.
type ErrorCaptureFunc func(err error, instance *ComponentInstance, phase ErrorPhase) bool

// handleError is the single chokepoint for errors escaping component
// code. It walks ancestor error-capture hooks from the nearest parent
// outward; any hook returning true swallows the error. Unswallowed
// errors reach the app handler, and absent one, the app logger.
func handleError(err error, instance *ComponentInstance, phase ErrorPhase) {
	if err == nil {
		return
	}
	wrapped := err
	name := ""
	if instance != nil {
		name = instance.Name()
	}
	if _, ok := err.(*RuntimeError); !ok {
		wrapped = &RuntimeError{Phase: phase, Component: name, Err: err}
	}

	var app *App
	if instance != nil {
		app = instance.app
		for cur := instance.parent; cur != nil; cur = cur.parent {
			for _, hook := range cur.errCapHooks {
				if invokeCapture(hook, wrapped, instance, phase, app) {
					return
				}
			}
		}
	}
	if app != nil && app.errorHandler != nil {
		app.errorHandler(wrapped, instance, phase)
		return
	}
	logger := slog.Default()
	if app != nil && app.logger != nil {
		logger = app.logger
	}
	logger.Error("unhandled component error",
		"phase", string(phase),
		"component", name,
		"err", err)
}

// invokeCapture runs one capture hook and reports whether it handled
// the error, guarding against the hook itself panicking. A panicking
// hook counts as "not handled" and is reported separately so capture
// bugs cannot hide the original error.
func invokeCapture(hook ErrorCaptureFunc, err error, instance *ComponentInstance, phase ErrorPhase, app *App) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			handled = false
			hookErr := &RuntimeError{Phase: PhaseErrorCapture, Err: recoveredError(r)}
			if app != nil && app.errorHandler != nil {
				app.errorHandler(hookErr, instance, PhaseErrorCapture)
			} else {
				slog.Default().Error("error capture hook failed", "err", hookErr)
			}
		}
	}()
	return hook(err, instance, phase)
}

// callWithErrorHandling runs fn, converting panics and returned errors
// into handleError calls. It reports whether fn completed cleanly.
func callWithErrorHandling(instance *ComponentInstance, phase ErrorPhase, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			handleError(recoveredError(r), instance, phase)
		}
	}()
	if err := fn(); err != nil {
		handleError(err, instance, phase)
		return false
	}
	return true
}
