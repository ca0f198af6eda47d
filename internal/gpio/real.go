//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealButtons reads the pushbuttons from actual hardware using the Linux
// GPIO character device.
type RealButtons struct {
	chip  *gpiocdev.Chip
	lines [3]*gpiocdev.Line
}

// NewRealButtons requests the three button pins as inputs with pull-ups.
// The buttons short to ground, so the raw level is inverted on read.
func NewRealButtons(pinOne, pinTwo, pinThree int) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealButtons{chip: chip}
	for i, pin := range []int{pinOne, pinTwo, pinThree} {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request button pin %d: %w", pin, err)
		}
		r.lines[i] = line
	}
	return r, nil
}

// Read returns the logical pressed states. Raw low (0) means pressed
// because the buttons are active-low with pull-ups.
func (r *RealButtons) Read() (ButtonSample, error) {
	var raw [3]int
	for i, line := range r.lines {
		v, err := line.Value()
		if err != nil {
			return ButtonSample{}, fmt.Errorf("read button %d: %w", i+1, err)
		}
		raw[i] = v
	}
	return ButtonSample{
		One:   raw[0] == 0,
		Two:   raw[1] == 0,
		Three: raw[2] == 0,
	}, nil
}

// Close releases the button lines and the chip.
func (r *RealButtons) Close() error {
	var errs []error
	for i, line := range r.lines {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button %d: %w", i+1, err))
		}
		r.lines[i] = nil
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutputs drives the mist relay over the GPIO character device and the
// fan over a kernel pwmchip.
type RealOutputs struct {
	chip *gpiocdev.Chip
	mist *gpiocdev.Line
	fan  *sysfsPWM

	maxDuty uint32
}

// NewRealOutputs requests the mist pin as an output (initially low) and
// configures the fan PWM channel at the given frequency. precisionBits
// fixes the duty range accepted by SetFanDuty.
func NewRealOutputs(mistPin, pwmChip, pwmChannel int, frequencyHz, precisionBits uint32) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	mist, err := chip.RequestLine(mistPin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request mist pin %d: %w", mistPin, err)
	}

	fan, err := newSysfsPWM(pwmChip, pwmChannel, frequencyHz)
	if err != nil {
		mist.Close()
		chip.Close()
		return nil, fmt.Errorf("init fan pwm: %w", err)
	}

	return &RealOutputs{
		chip:    chip,
		mist:    mist,
		fan:     fan,
		maxDuty: (1 << precisionBits) - 1,
	}, nil
}

// SetMist switches the mist relay line.
func (r *RealOutputs) SetMist(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.mist.SetValue(v); err != nil {
		return fmt.Errorf("write mist pin: %w", err)
	}
	return nil
}

// SetFanDuty writes the fan duty, scaled from the configured precision to
// the PWM period.
func (r *RealOutputs) SetFanDuty(duty uint32) error {
	if duty > r.maxDuty {
		duty = r.maxDuty
	}
	if err := r.fan.setDuty(duty, r.maxDuty); err != nil {
		return fmt.Errorf("write fan duty: %w", err)
	}
	return nil
}

// Close forces the mist relay low and the fan duty to zero before
// releasing resources, so a daemon restart never leaves the solenoid open.
func (r *RealOutputs) Close() error {
	var errs []error
	if r.mist != nil {
		if err := r.mist.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear mist pin: %w", err))
		}
		if err := r.mist.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mist pin: %w", err))
		}
		r.mist = nil
	}
	if r.fan != nil {
		if err := r.fan.close(); err != nil {
			errs = append(errs, fmt.Errorf("close fan pwm: %w", err))
		}
		r.fan = nil
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
