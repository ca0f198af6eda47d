// Package button turns raw pushbutton levels into gesture events: single
// clicks, double clicks, higher multi-clicks and long presses. One Detector
// instance tracks one physical button; it is fed debounce-rate samples by
// the polling loop.
//
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package button

import (
	"fmt"
	"time"
)

// ID identifies one of the three physical pushbuttons.
type ID int

const (
	One ID = iota + 1
	Two
	Three
)

// String returns the button name used in logs and MQTT payloads.
func (id ID) String() string {
	switch id {
	case One:
		return "ONE"
	case Two:
		return "TWO"
	case Three:
		return "THREE"
	}
	return fmt.Sprintf("BUTTON(%d)", int(id))
}

// Kind is the recognized gesture kind.
type Kind uint8

const (
	// Click is a single press released before the long-press threshold,
	// with no further press inside the click window.
	Click Kind = iota
	// DoubleClick is exactly two presses inside the click window.
	DoubleClick
	// MultiClick is three or more presses inside the click window; the
	// event carries the count.
	MultiClick
	// LongPressStart fires once when a press crosses the long-press
	// threshold.
	LongPressStart
	// LongPressHeld fires periodically while the long press continues.
	LongPressHeld
	// LongPressStop fires once when a long press is released.
	LongPressStop
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "CLICK"
	case DoubleClick:
		return "DOUBLE_CLICK"
	case MultiClick:
		return "MULTI_CLICK"
	case LongPressStart:
		return "LONG_PRESS_START"
	case LongPressHeld:
		return "LONG_PRESS_HELD"
	case LongPressStop:
		return "LONG_PRESS_STOP"
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Event is a recognized gesture. Clicks carries the press count for Click
// (1), DoubleClick (2) and MultiClick (>=3); it is zero for the long-press
// kinds.
type Event struct {
	Kind   Kind
	Clicks int
}

// Config holds the recognition timings.
type Config struct {
	// Debounce is how long a level must hold before it is believed.
	Debounce time.Duration
	// ClickWindow is how long after a release the detector waits for a
	// further press before finalizing the click count.
	ClickWindow time.Duration
	// PressStart is how long a press must hold before it becomes a long
	// press instead of a click.
	PressStart time.Duration
	// HeldInterval is the minimum spacing between LongPressHeld events.
	// Zero means one per poll tick.
	HeldInterval time.Duration
}

// DefaultConfig matches the classic pushbutton timings: 50ms debounce,
// 400ms click window, 800ms long-press threshold.
func DefaultConfig() Config {
	return Config{
		Debounce:    50 * time.Millisecond,
		ClickWindow: 400 * time.Millisecond,
		PressStart:  800 * time.Millisecond,
	}
}

type state uint8

const (
	stateIdle  state = iota // released, no gesture in progress
	stateDown               // pressed, could become click or long press
	stateCount              // released, waiting out the click window
	statePress              // long press in progress
)

// Detector recognizes gestures on a single button from polled samples.
// Not safe for concurrent use; it lives on the polling loop.
type Detector struct {
	cfg Config

	st      state
	since   time.Time // time of the transition into st
	clicks  int       // presses counted in the current gesture
	final   int       // click count of the last finalized multi-click
	lastHld time.Time // last LongPressHeld emission

	// debounce state
	rawLevel  bool
	rawSince  time.Time
	debounced bool
	seeded    bool
}

// NewDetector returns a Detector with the given timings. Zero fields in cfg
// fall back to DefaultConfig values (HeldInterval stays zero: held events
// on every tick).
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.Debounce == 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.ClickWindow == 0 {
		cfg.ClickWindow = def.ClickWindow
	}
	if cfg.PressStart == 0 {
		cfg.PressStart = def.PressStart
	}
	return &Detector{cfg: cfg}
}

// Tick feeds one sample into the detector. pressed is the logical button
// level (true = pressed, inversion for active-low wiring happens at the
// GPIO layer). It returns the gestures recognized at this sample, in order.
func (d *Detector) Tick(pressed bool, now time.Time) []Event {
	level := d.debounce(pressed, now)

	var events []Event
	switch d.st {
	case stateIdle:
		if level {
			d.transition(stateDown, now)
			d.clicks = 0
		}

	case stateDown:
		if !level {
			d.clicks++
			d.transition(stateCount, now)
		} else if now.Sub(d.since) >= d.cfg.PressStart {
			events = append(events, Event{Kind: LongPressStart})
			d.transition(statePress, now)
			d.lastHld = now
		}

	case stateCount:
		if level {
			d.transition(stateDown, now)
		} else if now.Sub(d.since) >= d.cfg.ClickWindow {
			d.final = d.clicks
			switch d.clicks {
			case 1:
				events = append(events, Event{Kind: Click, Clicks: 1})
			case 2:
				events = append(events, Event{Kind: DoubleClick, Clicks: 2})
			default:
				events = append(events, Event{Kind: MultiClick, Clicks: d.clicks})
			}
			d.transition(stateIdle, now)
			d.clicks = 0
		}

	case statePress:
		if !level {
			events = append(events, Event{Kind: LongPressStop})
			d.transition(stateIdle, now)
			d.clicks = 0
		} else if d.cfg.HeldInterval == 0 || now.Sub(d.lastHld) >= d.cfg.HeldInterval {
			events = append(events, Event{Kind: LongPressHeld})
			d.lastHld = now
		}
	}

	return events
}

// IsLongPressed reports whether the button is currently in a long press.
// The mist cycle uses this to skip automated firings while the operator is
// holding the button.
func (d *Detector) IsLongPressed() bool {
	return d.st == statePress
}

// ClickCount returns the press count of the most recently finalized
// click/multi-click gesture.
func (d *Detector) ClickCount() int {
	return d.final
}

func (d *Detector) transition(st state, now time.Time) {
	d.st = st
	d.since = now
}

// debounce filters the raw level: a change is only believed once it has
// held for the configured debounce duration.
func (d *Detector) debounce(raw bool, now time.Time) bool {
	if !d.seeded {
		d.seeded = true
		d.rawLevel = raw
		d.rawSince = now
		return d.debounced
	}
	if raw != d.rawLevel {
		d.rawLevel = raw
		d.rawSince = now
		return d.debounced
	}
	if now.Sub(d.rawSince) >= d.cfg.Debounce {
		d.debounced = raw
	}
	return d.debounced
}
