package sched

import (
	"testing"
	"time"
)

func at(ms int) time.Time {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(ms) * time.Millisecond)
}

func TestOnceFiresAfterDelay(t *testing.T) {
	s := New()
	fired := 0
	s.Once(at(0), 100*time.Millisecond, func(time.Time) { fired++ })

	s.Tick(at(50))
	if fired != 0 {
		t.Fatalf("fired before due: %d", fired)
	}

	s.Tick(at(100))
	if fired != 1 {
		t.Fatalf("expected 1 firing at due time, got %d", fired)
	}

	// A one-shot never fires twice.
	s.Tick(at(200))
	if fired != 1 {
		t.Fatalf("one-shot fired again: %d", fired)
	}
	if s.Len() != 0 {
		t.Errorf("expected no outstanding tasks, got %d", s.Len())
	}
}

func TestOnceZeroDelayFiresNextTick(t *testing.T) {
	s := New()
	fired := 0
	s.Once(at(0), 0, func(time.Time) { fired++ })
	s.Tick(at(0))
	if fired != 1 {
		t.Fatalf("zero-delay one-shot should fire on the next tick, got %d", fired)
	}
}

func TestEveryRepeats(t *testing.T) {
	s := New()
	var firings []time.Time
	s.Every(at(0), 100*time.Millisecond, func(now time.Time) { firings = append(firings, now) })

	for ms := 0; ms <= 300; ms += 50 {
		s.Tick(at(ms))
	}

	want := []time.Time{at(100), at(200), at(300)}
	if len(firings) != len(want) {
		t.Fatalf("expected %d firings, got %d", len(want), len(firings))
	}
	for i := range want {
		if !firings[i].Equal(want[i]) {
			t.Errorf("firing %d: got %v, want %v", i, firings[i], want[i])
		}
	}
}

func TestEveryReschedulesFromTickTime(t *testing.T) {
	s := New()
	fired := 0
	s.Every(at(0), 100*time.Millisecond, func(time.Time) { fired++ })

	// Late tick: the task runs once and re-arms from the tick time, it
	// does not try to catch up on missed intervals.
	s.Tick(at(350))
	if fired != 1 {
		t.Fatalf("expected 1 firing on late tick, got %d", fired)
	}
	s.Tick(at(400))
	if fired != 1 {
		t.Fatalf("re-armed task fired early: %d", fired)
	}
	s.Tick(at(450))
	if fired != 2 {
		t.Fatalf("expected re-armed firing at 450, got %d", fired)
	}
}

func TestZeroIntervalEveryFiresEachTick(t *testing.T) {
	s := New()
	fired := 0
	s.Every(at(0), 0, func(time.Time) { fired++ })
	for ms := 0; ms < 5; ms++ {
		s.Tick(at(ms))
	}
	if fired != 5 {
		t.Fatalf("expected a firing per tick, got %d", fired)
	}
}

func TestDueOrderWithRegistrationTieBreak(t *testing.T) {
	s := New()
	var order []string
	// Register out of due order; "b" is due earlier than "a".
	s.Once(at(0), 200*time.Millisecond, func(time.Time) { order = append(order, "a") })
	s.Once(at(0), 100*time.Millisecond, func(time.Time) { order = append(order, "b") })
	// Same due time as "b": registration order breaks the tie.
	s.Once(at(0), 100*time.Millisecond, func(time.Time) { order = append(order, "c") })

	s.Tick(at(500))

	want := []string{"b", "c", "a"}
	if len(order) != 3 {
		t.Fatalf("expected 3 firings, got %d", len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order %v, want %v", order, want)
		}
	}
}

func TestCancel(t *testing.T) {
	s := New()
	fired := 0
	h := s.Once(at(0), 100*time.Millisecond, func(time.Time) { fired++ })
	s.Cancel(h)
	s.Tick(at(200))
	if fired != 0 {
		t.Fatalf("cancelled task fired %d times", fired)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	s := New()
	h := s.Once(at(0), 100*time.Millisecond, func(time.Time) {})
	s.Tick(at(100)) // fires

	// Cancelling a fired one-shot, an unknown handle, or None is a no-op.
	s.Cancel(h)
	s.Cancel(Handle(9999))
	s.Cancel(None)
}

func TestCancelDuringTick(t *testing.T) {
	s := New()
	var hB Handle
	firedB := false
	// Both due at the same time; "a" runs first and cancels "b".
	s.Once(at(0), 100*time.Millisecond, func(time.Time) { s.Cancel(hB) })
	hB = s.Once(at(0), 100*time.Millisecond, func(time.Time) { firedB = true })

	s.Tick(at(100))
	if firedB {
		t.Fatal("task cancelled mid-tick still fired")
	}
}

func TestCancelAll(t *testing.T) {
	s := New()
	fired := 0
	s.Once(at(0), 100*time.Millisecond, func(time.Time) { fired++ })
	s.Every(at(0), 50*time.Millisecond, func(time.Time) { fired++ })
	s.CancelAll()
	if s.Len() != 0 {
		t.Errorf("expected 0 outstanding after CancelAll, got %d", s.Len())
	}
	s.Tick(at(500))
	if fired != 0 {
		t.Fatalf("tasks fired after CancelAll: %d", fired)
	}
}

func TestScheduleFromCallbackRunsNextTick(t *testing.T) {
	s := New()
	inner := 0
	s.Once(at(0), 0, func(now time.Time) {
		s.Once(now, 0, func(time.Time) { inner++ })
	})

	s.Tick(at(10))
	if inner != 0 {
		t.Fatal("task scheduled during tick ran in the same tick")
	}
	s.Tick(at(20))
	if inner != 1 {
		t.Fatalf("expected inner task to run on next tick, got %d", inner)
	}
}

func TestActive(t *testing.T) {
	s := New()
	h := s.Every(at(0), 10*time.Millisecond, func(time.Time) {})
	if !s.Active(h) {
		t.Error("repeating task should be active")
	}
	if s.Active(None) {
		t.Error("None must never be active")
	}

	one := s.Once(at(0), 10*time.Millisecond, func(time.Time) {})
	s.Tick(at(10))
	if s.Active(one) {
		t.Error("fired one-shot should not be active")
	}
	if !s.Active(h) {
		t.Error("repeating task should survive ticks")
	}

	s.CancelAll()
	if s.Active(h) {
		t.Error("task should not be active after CancelAll")
	}
}
