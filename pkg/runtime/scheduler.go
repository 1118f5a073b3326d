package runtime

import (
	"fmt"
	"sync"
)

// maxRecursiveUpdates bounds how many times a single job may re-enter the
// queue within one flush before the scheduler gives up on it. Hitting the
// bound almost always means a render effect writes a value it also reads.
const maxRecursiveUpdates = 100

// Job is a unit of scheduled work. Jobs are ordered by ID within a flush:
// parent components allocate lower uids than their children, so parents
// update first and can prune child updates that became unnecessary.
type Job struct {
	// ID orders the job in the queue. Jobs created earlier (ancestors)
	// carry lower IDs.
	ID uint64
	// Fn runs when the job is flushed.
	Fn func()
	// AllowRecurse lets the job re-enqueue itself while it is running.
	// Component update jobs set this so a child updated by its parent can
	// still schedule itself for events fired during the update.
	AllowRecurse bool

	queued   bool
	disposed bool
	runs     int
}

// Dispose permanently retires the job. A disposed job is skipped if it is
// already queued and silently ignored on later Enqueue calls.
func (j *Job) Dispose() {
	j.disposed = true
}

// Scheduler batches update jobs and runs them in ID order. It is the
// runtime's substitute for a microtask queue: writes enqueue jobs, and a
// later Flush drains them. Sessions flush after each delivered event;
// tests and standalone apps call Flush directly.
type Scheduler struct {
	mu         sync.Mutex
	queue      []*Job
	post       []func()
	flushing   bool
	flushIndex int

	// wake, when set, is called once whenever work arrives while no
	// flush is running. Servers use it to trigger a flush on the
	// session goroutine.
	wake func()

	onError func(err error)
}

// NewScheduler returns an empty scheduler. onError receives panics
// recovered from jobs; it must not be nil.
func NewScheduler(onError func(error)) *Scheduler {
	return &Scheduler{onError: onError}
}

// OnWake registers a callback invoked when a job or post callback is
// enqueued outside a flush.
func (s *Scheduler) OnWake(fn func()) {
	s.mu.Lock()
	s.wake = fn
	s.mu.Unlock()
}

// Enqueue adds j to the queue unless it is already pending or disposed.
// During a flush, jobs land in ID order after the currently running job,
// so updates scheduled mid-flush still run within the same flush.
func (s *Scheduler) Enqueue(j *Job) {
	s.mu.Lock()
	// For AllowRecurse jobs queued is cleared just before the run, so a
	// job re-enqueueing itself mid-run passes this check. Other jobs
	// stay marked until their run completes and cannot recurse.
	if j.disposed || j.queued {
		s.mu.Unlock()
		return
	}
	j.queued = true
	s.insertLocked(j)
	wake := s.wakeNeededLocked()
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Invalidate removes j from the queue if pending, without disposing it.
// Used when a parent update subsumes a child's own scheduled update.
func (s *Scheduler) Invalidate(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !j.queued {
		return
	}
	min := 0
	if s.flushing {
		min = s.flushIndex
	}
	if i := s.indexOfLocked(j); i >= min {
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		j.queued = false
	}
}

// EnqueuePost schedules fn to run after the main queue drains in the
// current (or next) flush. Mounted/updated lifecycle hooks go here.
func (s *Scheduler) EnqueuePost(fn func()) {
	s.mu.Lock()
	s.post = append(s.post, fn)
	wake := s.wakeNeededLocked()
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// HasPending reports whether any job or post callback is waiting.
func (s *Scheduler) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0 || len(s.post) > 0
}

// Flush drains the queue in ID order, then runs post callbacks, then
// repeats until both are empty. Re-entrant calls fold into the running
// flush and return immediately.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.flushIndex = 0
		for _, j := range s.queue {
			j.runs = 0
		}
		s.mu.Unlock()
	}()

	for {
		s.drainJobs()
		if !s.drainPost() {
			s.mu.Lock()
			done := len(s.queue) == 0
			s.mu.Unlock()
			if done {
				return
			}
		}
	}
}

func (s *Scheduler) drainJobs() {
	for {
		s.mu.Lock()
		if s.flushIndex >= len(s.queue) {
			s.queue = s.queue[:0]
			s.flushIndex = 0
			s.mu.Unlock()
			return
		}
		j := s.queue[s.flushIndex]
		s.flushIndex++
		if j.AllowRecurse {
			// Clearing before the run lets the job re-enqueue itself.
			j.queued = false
		}
		if j.disposed {
			j.queued = false
			s.mu.Unlock()
			continue
		}
		j.runs++
		over := j.runs > maxRecursiveUpdates
		s.mu.Unlock()

		if over {
			s.onError(fmt.Errorf("update loop: job %d exceeded %d recursive updates in one flush", j.ID, maxRecursiveUpdates))
			j.disposed = true
			continue
		}
		s.runJob(j)
	}
}

func (s *Scheduler) runJob(j *Job) {
	defer func() {
		if r := recover(); r != nil {
			s.onError(recoveredError(r))
		}
		if !j.AllowRecurse {
			s.mu.Lock()
			j.queued = false
			s.mu.Unlock()
		}
	}()
	j.Fn()
}

func (s *Scheduler) drainPost() bool {
	s.mu.Lock()
	if len(s.post) == 0 {
		s.mu.Unlock()
		return false
	}
	batch := s.post
	s.post = nil
	s.mu.Unlock()
	for _, fn := range batch {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.onError(recoveredError(r))
				}
			}()
			fn()
		}()
	}
	return true
}

// insertLocked places j in ID order, never before the flush cursor.
func (s *Scheduler) insertLocked(j *Job) {
	start := 0
	if s.flushing {
		start = s.flushIndex
	}
	i := start
	for i < len(s.queue) && s.queue[i].ID <= j.ID {
		i++
	}
	s.queue = append(s.queue, nil)
	copy(s.queue[i+1:], s.queue[i:])
	s.queue[i] = j
}

func (s *Scheduler) indexOfLocked(j *Job) int {
	for i, q := range s.queue {
		if q == j {
			return i
		}
	}
	return -1
}

func (s *Scheduler) wakeNeededLocked() func() {
	if s.flushing || s.wake == nil {
		return nil
	}
	return s.wake
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
