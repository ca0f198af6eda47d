package button

import (
	"testing"
	"time"
)

// sim feeds a Detector with samples at a fixed poll rate and collects the
// emitted gestures.
type sim struct {
	d      *Detector
	now    time.Time
	step   time.Duration
	events []Event
}

func newSim(cfg Config) *sim {
	return &sim{
		d:    NewDetector(cfg),
		now:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		step: 10 * time.Millisecond,
	}
}

// feed holds the given level for dur, polling every step.
func (s *sim) feed(pressed bool, dur time.Duration) {
	for end := s.now.Add(dur); s.now.Before(end); s.now = s.now.Add(s.step) {
		s.events = append(s.events, s.d.Tick(pressed, s.now)...)
	}
}

// press simulates a full press-and-release of the given hold duration.
func (s *sim) press(hold time.Duration) {
	s.feed(true, hold)
	s.feed(false, 100*time.Millisecond)
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestSingleClick(t *testing.T) {
	s := newSim(Config{})
	s.press(100 * time.Millisecond)
	s.feed(false, 600*time.Millisecond) // let the click window expire

	if len(s.events) != 1 {
		t.Fatalf("expected 1 event, got %v", kinds(s.events))
	}
	if s.events[0].Kind != Click || s.events[0].Clicks != 1 {
		t.Errorf("expected Click(1), got %v(%d)", s.events[0].Kind, s.events[0].Clicks)
	}
}

func TestDoubleClick(t *testing.T) {
	s := newSim(Config{})
	s.press(100 * time.Millisecond)
	s.press(100 * time.Millisecond)
	s.feed(false, 600*time.Millisecond)

	if len(s.events) != 1 {
		t.Fatalf("expected 1 event, got %v", kinds(s.events))
	}
	if s.events[0].Kind != DoubleClick || s.events[0].Clicks != 2 {
		t.Errorf("expected DoubleClick(2), got %v(%d)", s.events[0].Kind, s.events[0].Clicks)
	}
}

func TestMultiClick(t *testing.T) {
	for _, n := range []int{3, 4, 5} {
		s := newSim(Config{})
		for i := 0; i < n; i++ {
			s.press(100 * time.Millisecond)
		}
		s.feed(false, 600*time.Millisecond)

		if len(s.events) != 1 {
			t.Fatalf("n=%d: expected 1 event, got %v", n, kinds(s.events))
		}
		if s.events[0].Kind != MultiClick || s.events[0].Clicks != n {
			t.Errorf("n=%d: expected MultiClick(%d), got %v(%d)",
				n, n, s.events[0].Kind, s.events[0].Clicks)
		}
		if s.d.ClickCount() != n {
			t.Errorf("n=%d: ClickCount() = %d", n, s.d.ClickCount())
		}
	}
}

func TestSeparatedClicksAreSingles(t *testing.T) {
	s := newSim(Config{})
	s.press(100 * time.Millisecond)
	s.feed(false, 600*time.Millisecond) // window expires between presses
	s.press(100 * time.Millisecond)
	s.feed(false, 600*time.Millisecond)

	if len(s.events) != 2 {
		t.Fatalf("expected 2 events, got %v", kinds(s.events))
	}
	for i, e := range s.events {
		if e.Kind != Click {
			t.Errorf("event %d: expected Click, got %v", i, e.Kind)
		}
	}
}

func TestLongPress(t *testing.T) {
	s := newSim(Config{})
	s.feed(true, 1200*time.Millisecond)

	if !s.d.IsLongPressed() {
		t.Fatal("IsLongPressed should be true while held past the threshold")
	}

	s.feed(false, 200*time.Millisecond)
	if s.d.IsLongPressed() {
		t.Error("IsLongPressed should be false after release")
	}

	ks := kinds(s.events)
	if len(ks) < 3 {
		t.Fatalf("expected start/held.../stop, got %v", ks)
	}
	if ks[0] != LongPressStart {
		t.Errorf("first event: expected LongPressStart, got %v", ks[0])
	}
	if ks[len(ks)-1] != LongPressStop {
		t.Errorf("last event: expected LongPressStop, got %v", ks[len(ks)-1])
	}
	for _, k := range ks[1 : len(ks)-1] {
		if k != LongPressHeld {
			t.Errorf("middle event: expected LongPressHeld, got %v", k)
		}
	}
	// No click is reported after a long press.
	s.feed(false, 600*time.Millisecond)
	if n := len(s.events); kinds(s.events)[n-1] != LongPressStop {
		t.Errorf("unexpected trailing events: %v", kinds(s.events))
	}
}

func TestHeldInterval(t *testing.T) {
	s := newSim(Config{HeldInterval: 100 * time.Millisecond})
	s.feed(true, 1300*time.Millisecond)

	held := 0
	for _, e := range s.events {
		if e.Kind == LongPressHeld {
			held++
		}
	}
	// Press threshold crossed ~850ms in; ~450ms of hold remain, so at
	// most a handful of held events spaced 100ms apart.
	if held < 3 || held > 5 {
		t.Errorf("expected 3-5 held events at 100ms spacing, got %d", held)
	}
}

func TestBounceIsFiltered(t *testing.T) {
	s := newSim(Config{})
	// 20ms glitches are shorter than the 50ms debounce.
	s.feed(true, 20*time.Millisecond)
	s.feed(false, 20*time.Millisecond)
	s.feed(true, 20*time.Millisecond)
	s.feed(false, 700*time.Millisecond)

	if len(s.events) != 0 {
		t.Errorf("bounces produced events: %v", kinds(s.events))
	}
}

func TestDefaultsApplied(t *testing.T) {
	d := NewDetector(Config{})
	def := DefaultConfig()
	if d.cfg.Debounce != def.Debounce || d.cfg.ClickWindow != def.ClickWindow || d.cfg.PressStart != def.PressStart {
		t.Errorf("zero config did not pick up defaults: %+v", d.cfg)
	}
	if d.cfg.HeldInterval != 0 {
		t.Errorf("HeldInterval should default to zero, got %v", d.cfg.HeldInterval)
	}
}

func TestIDAndKindStrings(t *testing.T) {
	if One.String() != "ONE" || Two.String() != "TWO" || Three.String() != "THREE" {
		t.Error("unexpected button names")
	}
	if MultiClick.String() != "MULTI_CLICK" {
		t.Errorf("unexpected kind name: %s", MultiClick)
	}
}
