package runtime

import (
	"testing"
)

func noError(t *testing.T) func(error) {
	t.Helper()
	return func(err error) {
		t.Errorf("unexpected scheduler error: %v", err)
	}
}

func TestSchedulerRunsJobsInIDOrder(t *testing.T) {
	s := NewScheduler(noError(t))
	var order []int

	s.Enqueue(&Job{ID: 3, Fn: func() { order = append(order, 3) }})
	s.Enqueue(&Job{ID: 1, Fn: func() { order = append(order, 1) }})
	s.Enqueue(&Job{ID: 2, Fn: func() { order = append(order, 2) }})
	s.Flush()

	want := []int{1, 2, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got order %v, want %v", order, want)
		}
	}
}

func TestSchedulerDedupesQueuedJob(t *testing.T) {
	s := NewScheduler(noError(t))
	runs := 0
	j := &Job{ID: 1, Fn: func() { runs++ }}

	s.Enqueue(j)
	s.Enqueue(j)
	s.Enqueue(j)
	s.Flush()

	if runs != 1 {
		t.Errorf("job ran %d times, want 1", runs)
	}
}

func TestSchedulerJobEnqueuedMidFlushRunsInSameFlush(t *testing.T) {
	s := NewScheduler(noError(t))
	var order []int

	late := &Job{ID: 2, Fn: func() { order = append(order, 2) }}
	s.Enqueue(&Job{ID: 1, Fn: func() {
		order = append(order, 1)
		s.Enqueue(late)
	}})
	s.Enqueue(&Job{ID: 3, Fn: func() { order = append(order, 3) }})
	s.Flush()

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("got order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got order %v, want %v", order, want)
		}
	}
}

func TestSchedulerLowerIDEnqueuedMidFlushStillRuns(t *testing.T) {
	// A parent job scheduled while a child job runs cannot run before
	// the cursor, but it must not be lost.
	s := NewScheduler(noError(t))
	var order []int

	parent := &Job{ID: 1, Fn: func() { order = append(order, 1) }}
	s.Enqueue(&Job{ID: 5, Fn: func() {
		order = append(order, 5)
		s.Enqueue(parent)
	}})
	s.Flush()

	if len(order) != 2 || order[0] != 5 || order[1] != 1 {
		t.Errorf("got order %v, want [5 1]", order)
	}
}

func TestSchedulerPostRunsAfterJobs(t *testing.T) {
	s := NewScheduler(noError(t))
	var order []string

	s.EnqueuePost(func() { order = append(order, "post") })
	s.Enqueue(&Job{ID: 1, Fn: func() { order = append(order, "job") }})
	s.Flush()

	if len(order) != 2 || order[0] != "job" || order[1] != "post" {
		t.Errorf("got order %v, want [job post]", order)
	}
}

func TestSchedulerPostEnqueueingJobExtendsFlush(t *testing.T) {
	s := NewScheduler(noError(t))
	var order []string

	s.Enqueue(&Job{ID: 1, Fn: func() { order = append(order, "job1") }})
	s.EnqueuePost(func() {
		order = append(order, "post")
		s.Enqueue(&Job{ID: 2, Fn: func() { order = append(order, "job2") }})
	})
	s.Flush()

	want := []string{"job1", "post", "job2"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestSchedulerInvalidateRemovesPendingJob(t *testing.T) {
	s := NewScheduler(noError(t))
	runs := 0
	j := &Job{ID: 1, Fn: func() { runs++ }}

	s.Enqueue(j)
	s.Invalidate(j)
	s.Flush()

	if runs != 0 {
		t.Errorf("invalidated job still ran")
	}
	// Invalidate does not dispose; the job can be enqueued again.
	s.Enqueue(j)
	s.Flush()
	if runs != 1 {
		t.Errorf("job did not run after re-enqueue, runs=%d", runs)
	}
}

func TestSchedulerDisposedJobNeverRuns(t *testing.T) {
	s := NewScheduler(noError(t))
	runs := 0
	j := &Job{ID: 1, Fn: func() { runs++ }}

	j.Dispose()
	s.Enqueue(j)
	s.Flush()

	if runs != 0 {
		t.Errorf("disposed job ran")
	}
}

func TestSchedulerRecursionBound(t *testing.T) {
	var caught error
	s := NewScheduler(func(err error) { caught = err })

	var j *Job
	j = &Job{ID: 1, AllowRecurse: true, Fn: func() {
		s.Enqueue(j)
	}}
	s.Enqueue(j)
	s.Flush()

	if caught == nil {
		t.Fatalf("unbounded recursive job did not report an error")
	}
	if !s.flushing && s.HasPending() {
		t.Errorf("queue not drained after recursion bound hit")
	}
}

func TestSchedulerNonRecursiveJobCannotSelfEnqueue(t *testing.T) {
	s := NewScheduler(noError(t))
	runs := 0
	var j *Job
	j = &Job{ID: 1, Fn: func() {
		runs++
		s.Enqueue(j)
	}}
	s.Enqueue(j)
	s.Flush()

	if runs != 1 {
		t.Errorf("non-recursive job ran %d times, want 1", runs)
	}
}

func TestSchedulerJobPanicIsReportedAndFlushContinues(t *testing.T) {
	var caught error
	s := NewScheduler(func(err error) { caught = err })
	ran := false

	s.Enqueue(&Job{ID: 1, Fn: func() { panic("boom") }})
	s.Enqueue(&Job{ID: 2, Fn: func() { ran = true }})
	s.Flush()

	if caught == nil {
		t.Errorf("panic not reported")
	}
	if !ran {
		t.Errorf("later job skipped after panic")
	}
}

func TestSchedulerWakeFiresOutsideFlush(t *testing.T) {
	s := NewScheduler(noError(t))
	wakes := 0
	s.OnWake(func() { wakes++ })

	s.Enqueue(&Job{ID: 1, Fn: func() {
		// Enqueue during flush must not wake.
		s.EnqueuePost(func() {})
	}})
	if wakes != 1 {
		t.Fatalf("got %d wakes, want 1", wakes)
	}
	s.Flush()
	if wakes != 1 {
		t.Errorf("wake fired during flush, got %d", wakes)
	}
}
