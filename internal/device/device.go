// Package device wraps the two controllable outputs: the mist solenoid
// relay and the fan PWM channel. The relay keeps a cached state so the
// hardware line is only toggled on actual changes; fan writes go straight
// through.
package device

import (
	"github.com/aaronkirschen/mistFan/internal/gpio"
	"github.com/aaronkirschen/mistFan/internal/logger"
)

// MaxDuty returns the highest duty value expressible at the given PWM
// precision: 2^bits - 1.
func MaxDuty(precisionBits uint32) uint32 {
	return (1 << precisionBits) - 1
}

// DutyFromPercent converts a 0-100 percentage to a raw duty at the given
// precision. The fractional part is truncated, so 50% at 8 bits is 127.
func DutyFromPercent(percent int, precisionBits uint32) uint32 {
	if percent <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	return uint32(float64(percent) / 100.0 * float64(MaxDuty(precisionBits)))
}

// Device is the mist/fan output pair. Not safe for concurrent use; all
// writes happen on the controller loop.
type Device struct {
	out gpio.Outputs
	log *logger.Logger

	precisionBits uint32
	mistOn        bool // cached relay state
	fanPercent    int  // last commanded fan speed, for status reporting
}

// New returns a Device writing through out at the given PWM precision.
func New(out gpio.Outputs, precisionBits uint32, log *logger.Logger) *Device {
	return &Device{out: out, log: log, precisionBits: precisionBits}
}

// WriteMist drives the relay to the requested state. The hardware line is
// only written when the request differs from the cached state; it returns
// whether a write happened. Write errors are logged and the cache is left
// unchanged.
func (d *Device) WriteMist(on bool) bool {
	if on == d.mistOn {
		return false
	}
	if err := d.out.SetMist(on); err != nil {
		d.log.Errorw("mist relay write failed", "on", on, "err", err)
		return false
	}
	d.mistOn = on
	return true
}

// MistOn turns the mist relay on.
func (d *Device) MistOn() bool { return d.WriteMist(true) }

// MistOff turns the mist relay off.
func (d *Device) MistOff() bool { return d.WriteMist(false) }

// IsMistOn returns the cached relay state.
func (d *Device) IsMistOn() bool { return d.mistOn }

// SetFanSpeedPercent writes the fan duty for the given percentage.
// Unlike the mist relay there is no change guard: every call writes.
func (d *Device) SetFanSpeedPercent(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	duty := DutyFromPercent(percent, d.precisionBits)
	if err := d.out.SetFanDuty(duty); err != nil {
		d.log.Errorw("fan duty write failed", "percent", percent, "duty", duty, "err", err)
		return
	}
	d.fanPercent = percent
	d.log.Debugw("fan duty written", "percent", percent, "duty", duty)
}

// FanOn sets the fan to full speed.
func (d *Device) FanOn() { d.SetFanSpeedPercent(100) }

// FanOff stops the fan.
func (d *Device) FanOff() { d.SetFanSpeedPercent(0) }

// FanPercent returns the last commanded fan speed.
func (d *Device) FanPercent() int { return d.fanPercent }
