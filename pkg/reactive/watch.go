package reactive

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	immediate bool
	scheduler SchedulerFunc
}

// Immediate makes Watch invoke its callback once with the initial value
// before any change occurs.
func Immediate() WatchOption {
	return func(c *watchConfig) {
		c.immediate = true
	}
}

// Scheduled defers watcher callbacks through fn instead of running them
// inline on trigger. The runtime installs its render scheduler here so
// watcher callbacks observe post-flush state.
func Scheduled(fn SchedulerFunc) WatchOption {
	return func(c *watchConfig) {
		c.scheduler = fn
	}
}

// Watch observes the value produced by getter and calls cb with the new
// and previous values whenever it changes. The getter runs tracked; the
// callback runs untracked. Returns a stop function.
func Watch[T any](getter func() T, cb func(next, prev T), opts ...WatchOption) func() {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var prev T
	first := true

	var effectOpts []EffectOption
	if cfg.scheduler != nil {
		effectOpts = append(effectOpts, WithScheduler(cfg.scheduler))
	}

	e := NewEffect(func() Cleanup {
		next := getter()
		if first {
			first = false
			prev = next
			if cfg.immediate {
				var zero T
				Untracked(func() { cb(next, zero) })
			}
			return nil
		}
		if valuesEqual(any(next), any(prev)) {
			return nil
		}
		old := prev
		prev = next
		Untracked(func() { cb(next, old) })
		return nil
	}, effectOpts...)

	return e.Stop
}

// WatchEffect runs fn immediately as a tracked effect and re-runs it when
// any dependency changes. Returns a stop function.
func WatchEffect(fn func(), opts ...WatchOption) func() {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var effectOpts []EffectOption
	if cfg.scheduler != nil {
		effectOpts = append(effectOpts, WithScheduler(cfg.scheduler))
	}

	e := NewEffect(func() Cleanup {
		fn()
		return nil
	}, effectOpts...)

	return e.Stop
}
