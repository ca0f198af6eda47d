// Package sched implements the cooperative timer facility that drives the
// controller. All deferred work — button polling, mist off-timers, repeating
// mist cycles, the inactivity shutoff — runs through a single Scheduler that
// the host loop ticks as often as it can.
//
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters, which
// keeps every timing property testable with a simulated clock.
package sched

import (
	"sort"
	"time"
)

// Handle identifies a scheduled task. The zero Handle is never issued and
// can be used as a "no task" sentinel by callers holding a handle slot.
type Handle uint64

// None is the zero Handle.
const None Handle = 0

// Callback is invoked when a task comes due. It receives the tick time so
// that follow-up scheduling stays on the simulated clock in tests.
// Callbacks must return promptly; a callback that blocks stalls every other
// task behind it.
type Callback func(now time.Time)

type task struct {
	handle    Handle
	seq       uint64
	due       time.Time
	interval  time.Duration
	repeating bool
	fn        Callback
	cancelled bool
	fired     bool // one-shot that already ran
}

// Scheduler multiplexes one-shot and repeating callbacks over a single
// polled timer. It is not safe for concurrent use: all scheduling,
// cancellation and ticking must happen on the one loop that owns it.
type Scheduler struct {
	tasks      []*task
	nextHandle Handle
	nextSeq    uint64
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Once schedules fn to run once, delay after now. It returns a Handle that
// can be passed to Cancel until the task fires.
func (s *Scheduler) Once(now time.Time, delay time.Duration, fn Callback) Handle {
	return s.add(now.Add(delay), 0, false, fn)
}

// Every schedules fn to run every interval, first at now+interval. A zero
// interval makes the task fire on every Tick. Callers that need an
// immediate first action perform it themselves before calling Every; the
// scheduler never runs the first iteration early.
func (s *Scheduler) Every(now time.Time, interval time.Duration, fn Callback) Handle {
	return s.add(now.Add(interval), interval, true, fn)
}

func (s *Scheduler) add(due time.Time, interval time.Duration, repeating bool, fn Callback) Handle {
	s.nextHandle++
	s.nextSeq++
	t := &task{
		handle:    s.nextHandle,
		seq:       s.nextSeq,
		due:       due,
		interval:  interval,
		repeating: repeating,
		fn:        fn,
	}
	s.tasks = append(s.tasks, t)
	return t.handle
}

// Cancel removes the task identified by h. Cancelling an already-fired
// one-shot, an unknown handle, or None is a no-op. A cancelled task will
// not fire on any subsequent Tick, including the remainder of a Tick that
// is currently in flight.
func (s *Scheduler) Cancel(h Handle) {
	if h == None {
		return
	}
	for _, t := range s.tasks {
		if t.handle == h {
			t.cancelled = true
			return
		}
	}
}

// CancelAll removes every outstanding task. Any handle held by a caller is
// invalid afterwards and must be treated as None.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.cancelled = true
	}
}

// Active reports whether h refers to a task that can still fire.
func (s *Scheduler) Active(h Handle) bool {
	if h == None {
		return false
	}
	for _, t := range s.tasks {
		if t.handle == h {
			return !t.cancelled && !t.fired
		}
	}
	return false
}

// Len returns the number of outstanding tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

// Tick runs every callback whose due time has elapsed, ordered by due time
// with ties broken by registration order, then re-arms repeating tasks for
// now+interval. Tasks scheduled from inside a callback run no earlier than
// the next Tick, even with zero delay. Fired one-shots and cancelled tasks
// are pruned.
func (s *Scheduler) Tick(now time.Time) {
	// Snapshot the due set before running anything so callbacks that
	// schedule new work cannot extend the current tick.
	var due []*task
	for _, t := range s.tasks {
		if !t.cancelled && !t.due.After(now) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].due.Equal(due[j].due) {
			return due[i].due.Before(due[j].due)
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		if t.cancelled {
			// Cancelled by an earlier callback in this same tick.
			continue
		}
		t.fn(now)
		if t.repeating {
			t.due = now.Add(t.interval)
		} else {
			t.fired = true
		}
	}

	s.prune()
}

func (s *Scheduler) prune() {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			kept = append(kept, t)
		}
	}
	// Zero the tail so pruned tasks can be collected.
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}
