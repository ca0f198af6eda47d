//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(pinOne, pinTwo, pinThree int) (*RealButtons, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealButtons) Read() (ButtonSample, error) {
	return ButtonSample{}, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealButtons) Close() error {
	return nil
}

// RealOutputs is not available on non-Linux platforms.
type RealOutputs struct{}

// NewRealOutputs returns an error on non-Linux platforms.
func NewRealOutputs(mistPin, pwmChip, pwmChannel int, frequencyHz, precisionBits uint32) (*RealOutputs, error) {
	return nil, errUnsupported
}

// SetMist is not implemented on non-Linux platforms.
func (r *RealOutputs) SetMist(on bool) error {
	return errUnsupported
}

// SetFanDuty is not implemented on non-Linux platforms.
func (r *RealOutputs) SetFanDuty(duty uint32) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealOutputs) Close() error {
	return nil
}
