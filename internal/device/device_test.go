package device

import (
	"errors"
	"testing"

	"github.com/aaronkirschen/mistFan/internal/gpio"
	"github.com/aaronkirschen/mistFan/internal/logger"
)

func TestMaxDuty(t *testing.T) {
	tests := []struct {
		bits uint32
		want uint32
	}{
		{8, 255},
		{10, 1023},
		{12, 4095},
	}
	for _, tt := range tests {
		if got := MaxDuty(tt.bits); got != tt.want {
			t.Errorf("MaxDuty(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestDutyFromPercent(t *testing.T) {
	tests := []struct {
		percent int
		bits    uint32
		want    uint32
	}{
		{100, 8, 255},
		{0, 8, 0},
		{50, 8, 127}, // 127.5 truncates
		{70, 8, 178}, // 178.5 truncates
		{100, 10, 1023},
		{-5, 8, 0},   // clamped
		{150, 8, 255}, // clamped
	}
	for _, tt := range tests {
		if got := DutyFromPercent(tt.percent, tt.bits); got != tt.want {
			t.Errorf("DutyFromPercent(%d, %d) = %d, want %d", tt.percent, tt.bits, got, tt.want)
		}
	}
}

func TestWriteMistOnChange(t *testing.T) {
	out := gpio.NewFakeOutputs()
	d := New(out, 8, logger.Nop())

	// A write occurs iff the requested state differs from the cache.
	if !d.WriteMist(true) {
		t.Error("first on-write should hit hardware")
	}
	if d.WriteMist(true) {
		t.Error("repeated on-write should be suppressed")
	}
	if !d.WriteMist(false) {
		t.Error("off-write should hit hardware")
	}
	if d.WriteMist(false) {
		t.Error("repeated off-write should be suppressed")
	}

	want := []bool{true, false}
	if len(out.MistWrites) != len(want) {
		t.Fatalf("expected %d hardware writes, got %v", len(want), out.MistWrites)
	}
	for i := range want {
		if out.MistWrites[i] != want[i] {
			t.Errorf("write %d: got %v, want %v", i, out.MistWrites[i], want[i])
		}
	}
}

func TestWriteMistInitialOffSuppressed(t *testing.T) {
	out := gpio.NewFakeOutputs()
	d := New(out, 8, logger.Nop())

	// The relay starts off; turning an off relay off is a no-op.
	if d.MistOff() {
		t.Error("off-write on an off relay should be suppressed")
	}
	if len(out.MistWrites) != 0 {
		t.Errorf("unexpected hardware writes: %v", out.MistWrites)
	}
}

func TestWriteMistErrorKeepsCache(t *testing.T) {
	out := gpio.NewFakeOutputs()
	out.MistError = errors.New("write fail")
	d := New(out, 8, logger.Nop())

	if d.WriteMist(true) {
		t.Error("failed write must not report a change")
	}
	if d.IsMistOn() {
		t.Error("cache must not advance past a failed write")
	}

	// Once the fault clears, the same request goes through.
	out.MistError = nil
	if !d.WriteMist(true) {
		t.Error("retry after fault should write")
	}
}

func TestFanWritesAreUnconditional(t *testing.T) {
	out := gpio.NewFakeOutputs()
	d := New(out, 8, logger.Nop())

	d.FanOn()
	d.FanOn()
	d.FanOff()

	want := []uint32{255, 255, 0}
	if len(out.FanDuties) != len(want) {
		t.Fatalf("expected %d duty writes, got %v", len(want), out.FanDuties)
	}
	for i := range want {
		if out.FanDuties[i] != want[i] {
			t.Errorf("duty %d: got %d, want %d", i, out.FanDuties[i], want[i])
		}
	}
	if d.FanPercent() != 0 {
		t.Errorf("FanPercent = %d, want 0", d.FanPercent())
	}
}

func TestSetFanSpeedPercent(t *testing.T) {
	out := gpio.NewFakeOutputs()
	d := New(out, 8, logger.Nop())

	d.SetFanSpeedPercent(50)
	if out.FanDuty != 127 {
		t.Errorf("duty = %d, want 127", out.FanDuty)
	}
	if d.FanPercent() != 50 {
		t.Errorf("FanPercent = %d, want 50", d.FanPercent())
	}
}
