// Package gpio is the hardware boundary of the mistfan daemon: button
// inputs, the mist relay line and the fan PWM channel.
// The real implementation uses the Linux GPIO character device for lines
// and the kernel pwmchip sysfs interface for the fan.
// The fake implementations allow testing without hardware.
package gpio

// ButtonSample is one poll of the three pushbuttons, already in logical
// form (true = pressed; active-low inversion happens in the reader).
type ButtonSample struct {
	One   bool
	Two   bool
	Three bool
}

// Buttons reads the pushbutton levels.
type Buttons interface {
	// Read returns the logical pressed state of the three buttons.
	Read() (ButtonSample, error)

	// Close releases GPIO resources.
	Close() error
}

// Outputs drives the mist relay and the fan PWM channel.
type Outputs interface {
	// SetMist switches the mist solenoid relay.
	SetMist(on bool) error

	// SetFanDuty writes a raw PWM duty in 0..2^precision-1.
	SetFanDuty(duty uint32) error

	// Close forces both outputs off and releases resources.
	Close() error
}

// Default pin assignments, matching the device wiring.
const (
	DefaultPinButtonOne   = 9  // pushbutton closest to the connector
	DefaultPinButtonTwo   = 11 // pushbutton in the middle
	DefaultPinButtonThree = 12 // pushbutton farthest from the connector
	DefaultPinMist        = 7  // mist solenoid power mosfet
)

// Default fan PWM parameters.
const (
	DefaultPWMChip      = 0
	DefaultPWMChannel   = 0
	DefaultPWMFrequency = 25000 // Hz, above audible range
	DefaultPWMPrecision = 8     // bits; max duty 255
)
