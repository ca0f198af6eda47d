// Package control is the gesture-driven heart of the daemon. It owns the
// scheduler handles for the repeating mist cycle and the inactivity
// shutoff, maps button gestures to device actions, and emits events for
// telemetry.
//
// All methods must be called from the single loop that ticks the
// scheduler; nothing here is safe for concurrent use.
package control

import (
	"time"

	"github.com/aaronkirschen/mistFan/internal/button"
	"github.com/aaronkirschen/mistFan/internal/device"
	"github.com/aaronkirschen/mistFan/internal/logger"
	"github.com/aaronkirschen/mistFan/internal/sched"
)

// CycleSpec describes a repeating mist cycle: mist on for On, off for Off,
// repeating until cancelled. A single pulse is the degenerate case with no
// repetition.
type CycleSpec struct {
	On  time.Duration
	Off time.Duration
}

// Period is the scheduler interval of the repeating cycle.
func (c CycleSpec) Period() time.Duration { return c.On + c.Off }

// Presets are the mist timings bound to button One's gestures. More clicks
// select shorter, more intense cycles.
type Presets struct {
	ClickPulse  time.Duration // single click: one pulse
	DoubleClick CycleSpec
	TripleClick CycleSpec
	QuadClick   CycleSpec
	QuintClick  CycleSpec
}

// DefaultPresets returns the stock gesture timings.
func DefaultPresets() Presets {
	return Presets{
		ClickPulse:  time.Second,
		DoubleClick: CycleSpec{On: time.Second, Off: 30 * time.Second},
		TripleClick: CycleSpec{On: time.Second, Off: 15 * time.Second},
		QuadClick:   CycleSpec{On: 3 * time.Second, Off: 30 * time.Second},
		QuintClick:  CycleSpec{On: 3 * time.Second, Off: 15 * time.Second},
	}
}

// DefaultTimeout is the inactivity window after which everything powers
// down.
const DefaultTimeout = 2 * time.Hour

// Config parameterizes a Controller.
type Config struct {
	// Timeout is the inactivity window. Zero selects DefaultTimeout.
	Timeout time.Duration

	// Presets are the button One mist timings. Zero-valued presets are
	// replaced by DefaultPresets.
	Presets Presets

	// HoldGuard reports whether button One is currently in a long
	// press. A due repeating-cycle firing is skipped while it returns
	// true, so the automation never fights a manual hold. Nil means no
	// guard.
	HoldGuard func() bool
}

// Controller owns the device outputs and the two scheduler handle slots:
// the repeating mist cycle and the inactivity shutoff. At most one of each
// is live; replacing either always cancels the old handle first.
type Controller struct {
	sched *sched.Scheduler
	dev   *device.Device
	log   *logger.Logger
	pub   Publisher
	cfg   Config

	cycleTask   sched.Handle
	timeoutTask sched.Handle
	active      *CycleSpec
	deadline    time.Time

	counts EventCounts
}

// New wires a Controller. pub may be nil to disable event publishing.
func New(s *sched.Scheduler, dev *device.Device, cfg Config, log *logger.Logger, pub Publisher) *Controller {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if (cfg.Presets == Presets{}) {
		cfg.Presets = DefaultPresets()
	}
	return &Controller{
		sched: s,
		dev:   dev,
		log:   log,
		pub:   pub,
		cfg:   cfg,
	}
}

// HandleGesture dispatches one recognized gesture. Every gesture, on any
// button, re-arms the inactivity shutoff to the full window.
func (c *Controller) HandleGesture(now time.Time, id button.ID, ev button.Event) {
	c.ResetTimeout(now)

	if ev.Kind == button.LongPressHeld {
		// Held fires once per poll tick; keep it out of counters and
		// telemetry.
		c.log.Debugw("gesture", "button", id, "kind", ev.Kind)
	} else {
		c.counts.Gestures++
		c.log.Infow("gesture", "button", id, "kind", ev.Kind, "clicks", ev.Clicks)
		c.emitGesture(now, id, ev)
	}

	switch id {
	case button.One:
		c.dispatchOne(now, ev)
	case button.Two:
		c.dispatchTwo(now, ev)
	case button.Three:
		c.dispatchThree(now, ev)
	default:
		c.log.Warnw("gesture from unknown button", "button", int(id))
	}
}

// dispatchOne: the primary mist surface. Escalating click counts select
// shorter, more intense repeating cycles; holding the button mists for the
// duration of the hold.
func (c *Controller) dispatchOne(now time.Time, ev button.Event) {
	p := c.cfg.Presets
	switch ev.Kind {
	case button.Click:
		c.Pulse(now, p.ClickPulse)
	case button.DoubleClick:
		c.StartRepeating(now, p.DoubleClick)
	case button.MultiClick:
		switch ev.Clicks {
		case 3:
			c.StartRepeating(now, p.TripleClick)
		case 4:
			c.StartRepeating(now, p.QuadClick)
		case 5:
			c.StartRepeating(now, p.QuintClick)
		default:
			c.log.Debugw("unmapped multi-click", "button", button.One, "clicks", ev.Clicks)
		}
	case button.LongPressStart:
		// Mist turns on with the first held event, not here.
	case button.LongPressHeld:
		c.mistOn(now)
	case button.LongPressStop:
		c.mistOff(now)
	}
}

// dispatchTwo: plain fan switch.
func (c *Controller) dispatchTwo(now time.Time, ev button.Event) {
	switch ev.Kind {
	case button.Click:
		c.FanOn(now)
	case button.DoubleClick:
		c.FanOff(now)
	default:
		// Long presses and multi-clicks are hooks without a device
		// action.
		c.log.Debugw("unmapped gesture", "button", button.Two, "kind", ev.Kind, "clicks", ev.Clicks)
	}
}

// dispatchThree: the panic/reset button.
func (c *Controller) dispatchThree(now time.Time, ev button.Event) {
	switch ev.Kind {
	case button.Click:
		c.CancelRepeating(now)
	case button.DoubleClick:
		c.StopAll(now)
		c.FanOff(now)
	default:
		c.log.Debugw("unmapped gesture", "button", button.Three, "kind", ev.Kind, "clicks", ev.Clicks)
	}
}

// Pulse turns the mist on immediately and schedules a one-shot off after
// duration. Pulses are fire-and-forget: no handle is tracked, and
// overlapping pulses each arm their own off-timer. With overlapping
// pulses the earliest off-timer wins and can cut a later pulse short;
// this matches the device's long-observed behavior and is deliberately
// left as is.
func (c *Controller) Pulse(now time.Time, duration time.Duration) {
	c.log.Infow("mist pulse", "duration", duration)
	c.counts.MistPulses++
	c.mistOn(now)
	c.sched.Once(now, duration, func(t time.Time) {
		c.mistOff(t)
	})
}

// StartRepeating begins a repeating mist cycle: an immediate pulse, then
// one pulse per period. The scheduler only fires from the first period
// boundary onward, hence the explicit initial pulse. Any previously
// active cycle is cancelled first so exactly one cycle ever runs.
func (c *Controller) StartRepeating(now time.Time, spec CycleSpec) {
	c.CancelRepeating(now)

	c.log.Infow("mist cycle started", "on", spec.On, "off", spec.Off)
	c.Pulse(now, spec.On)

	on := spec.On
	c.cycleTask = c.sched.Every(now, spec.Period(), func(t time.Time) {
		if c.cfg.HoldGuard != nil && c.cfg.HoldGuard() {
			c.log.Debugw("cycle firing skipped: button held")
			return
		}
		c.Pulse(t, on)
	})
	s := spec
	c.active = &s
	c.counts.CyclesStarted++
	c.emit(now, EventCycleStart)
}

// CancelRepeating cancels the active repeating cycle if there is one.
// Pending pulse off-timers are left alone; a stray mist-off against an
// already-off relay is suppressed by the write-on-change cache.
func (c *Controller) CancelRepeating(now time.Time) {
	if c.cycleTask == sched.None {
		return
	}
	c.log.Infow("mist cycle cancelled")
	c.sched.Cancel(c.cycleTask)
	c.cycleTask = sched.None
	c.active = nil
	c.counts.CyclesCancelled++
	c.emit(now, EventCycleCancel)
}

// StopAll cancels the repeating cycle and forces the mist relay off.
func (c *Controller) StopAll(now time.Time) {
	c.CancelRepeating(now)
	c.mistOff(now)
}

// FanOn runs the fan at full speed.
func (c *Controller) FanOn(now time.Time) {
	c.dev.FanOn()
	c.emit(now, EventFanOn)
}

// FanOff stops the fan.
func (c *Controller) FanOff(now time.Time) {
	c.dev.FanOff()
	c.emit(now, EventFanOff)
}

// ResetTimeout re-arms the inactivity shutoff for the full window from
// now, cancelling any previously armed shutoff first.
func (c *Controller) ResetTimeout(now time.Time) {
	if c.timeoutTask != sched.None {
		c.sched.Cancel(c.timeoutTask)
	}
	c.deadline = now.Add(c.cfg.Timeout)
	c.timeoutTask = c.sched.Once(now, c.cfg.Timeout, c.onTimeout)
	c.log.Debugw("inactivity shutoff armed", "deadline", c.deadline)
}

// onTimeout powers everything down: every scheduled task is cancelled and
// both outputs are forced off. The shutoff is not re-armed; the next
// gesture arms a fresh one.
func (c *Controller) onTimeout(now time.Time) {
	c.log.Infow("inactivity timeout: shutting everything down")
	c.sched.CancelAll()
	// CancelAll invalidated every handle we hold.
	c.cycleTask = sched.None
	c.timeoutTask = sched.None
	c.active = nil
	c.deadline = time.Time{}
	c.counts.Timeouts++
	c.mistOff(now)
	c.dev.FanOff()
	c.emit(now, EventTimeout)
}

func (c *Controller) mistOn(now time.Time) {
	if c.dev.MistOn() {
		c.counts.MistOn++
		c.emit(now, EventMistOn)
	}
}

func (c *Controller) mistOff(now time.Time) {
	if c.dev.MistOff() {
		c.counts.MistOff++
		c.emit(now, EventMistOff)
	}
}

// ActiveCycle returns a copy of the active repeating cycle, or nil.
func (c *Controller) ActiveCycle() *CycleSpec {
	if c.active == nil {
		return nil
	}
	s := *c.active
	return &s
}

// TimeoutDeadline returns when the inactivity shutoff will fire, or the
// zero time if none is armed.
func (c *Controller) TimeoutDeadline() time.Time { return c.deadline }

// Counts returns the activity counters.
func (c *Controller) Counts() EventCounts { return c.counts }

func (c *Controller) emitGesture(now time.Time, id button.ID, ev button.Event) {
	e := c.event(now, EventGesture)
	e.Button = id
	e.Gesture = ev.Kind
	e.Clicks = ev.Clicks
	c.publish(e)
}

func (c *Controller) emit(now time.Time, typ EventType) {
	c.publish(c.event(now, typ))
}

func (c *Controller) event(now time.Time, typ EventType) Event {
	return Event{
		Timestamp:  now,
		Type:       typ,
		MistOn:     c.dev.IsMistOn(),
		FanPercent: c.dev.FanPercent(),
		Cycle:      c.ActiveCycle(),
	}
}

func (c *Controller) publish(e Event) {
	if c.pub == nil {
		return
	}
	if err := c.pub.Publish(e); err != nil {
		// Telemetry must never affect control flow.
		c.log.Debugw("event publish failed", "type", e.Type, "err", err)
	}
}
