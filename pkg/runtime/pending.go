package runtime

import "sync"

// Pending is the handle a Setup function returns when its result is not
// ready yet. The renderer mounts a comment placeholder in its place and
// resumes the component once the handle resolves.
//
// Resolve and Fail may be called from any goroutine; the resumed work is
// handed to the app's scheduler, never run inline.
type Pending struct {
	mu       sync.Mutex
	settled  bool
	result   any
	err      error
	onSettle func(result any, err error)
}

// NewPending returns an unsettled handle.
func NewPending() *Pending {
	return &Pending{}
}

// Resolve settles the handle with the setup result (a render function or
// a state map, same as a synchronous Setup return). Calls after the
// first settle are ignored.
func (p *Pending) Resolve(result any) {
	p.settle(result, nil)
}

// Fail settles the handle with an error. The error is routed through the
// component's error chokepoint and the placeholder stays in the tree.
func (p *Pending) Fail(err error) {
	p.settle(nil, err)
}

func (p *Pending) settle(result any, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.result = result
	p.err = err
	fn := p.onSettle
	p.mu.Unlock()
	if fn != nil {
		fn(result, err)
	}
}

// subscribe registers the settle callback, firing immediately if the
// handle already settled.
func (p *Pending) subscribe(fn func(result any, err error)) {
	p.mu.Lock()
	if p.settled {
		result, err := p.result, p.err
		p.mu.Unlock()
		fn(result, err)
		return
	}
	p.onSettle = fn
	p.mu.Unlock()
}
