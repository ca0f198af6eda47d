package gpio

import "errors"

// FakeButtons is a test double that returns scripted button samples.
type FakeButtons struct {
	// Samples contains scripted pressed states. Each call to Read()
	// consumes the next sample; the last one repeats once exhausted.
	Samples []ButtonSample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeButtons creates a FakeButtons with the given samples.
func NewFakeButtons(samples []ButtonSample) *FakeButtons {
	return &FakeButtons{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeButtons) Read() (ButtonSample, error) {
	if f.ReadError != nil {
		return ButtonSample{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return ButtonSample{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeButtons) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutputs records every hardware write for test assertions.
type FakeOutputs struct {
	// MistWrites contains every value written to the mist relay, in
	// order. The write-on-change property asserts against this slice.
	MistWrites []bool

	// FanDuties contains every duty written to the fan channel.
	FanDuties []uint32

	// Mist and FanDuty hold the latest written values.
	Mist    bool
	FanDuty uint32

	// MistError / FanError, if set, are returned by the writes.
	MistError error
	FanError  error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeOutputs creates a FakeOutputs.
func NewFakeOutputs() *FakeOutputs {
	return &FakeOutputs{}
}

// SetMist records the relay write.
func (f *FakeOutputs) SetMist(on bool) error {
	if f.MistError != nil {
		return f.MistError
	}
	f.MistWrites = append(f.MistWrites, on)
	f.Mist = on
	return nil
}

// SetFanDuty records the duty write.
func (f *FakeOutputs) SetFanDuty(duty uint32) error {
	if f.FanError != nil {
		return f.FanError
	}
	f.FanDuties = append(f.FanDuties, duty)
	f.FanDuty = duty
	return nil
}

// Close marks the outputs as closed.
func (f *FakeOutputs) Close() error {
	f.Closed = true
	return nil
}
