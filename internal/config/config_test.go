package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a temp dir so a stray mistfan.yaml in the working
	// directory cannot leak into the test.
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Poll != 5*time.Millisecond {
		t.Errorf("poll = %v", cfg.Poll)
	}
	if cfg.Timeout != 2*time.Hour {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Broker != "tcp://localhost:1883" {
		t.Errorf("broker = %q", cfg.Broker)
	}
	if cfg.Pins.ButtonOne != 9 || cfg.Pins.ButtonTwo != 11 || cfg.Pins.ButtonThree != 12 || cfg.Pins.Mist != 7 {
		t.Errorf("pins = %+v", cfg.Pins)
	}
	if cfg.PWM.FrequencyHz != 25000 || cfg.PWM.PrecisionBits != 8 {
		t.Errorf("pwm = %+v", cfg.PWM)
	}
	if cfg.Gesture.Debounce != 50*time.Millisecond ||
		cfg.Gesture.ClickWindow != 400*time.Millisecond ||
		cfg.Gesture.PressStart != 800*time.Millisecond {
		t.Errorf("gesture = %+v", cfg.Gesture)
	}
	if cfg.Presets.PulseOn != time.Second {
		t.Errorf("pulse_on = %v", cfg.Presets.PulseOn)
	}
	if cfg.Presets.TripleClick.On != time.Second || cfg.Presets.TripleClick.Off != 15*time.Second {
		t.Errorf("triple_click = %+v", cfg.Presets.TripleClick)
	}
	if cfg.Presets.QuadClick.On != 3*time.Second || cfg.Presets.QuadClick.Off != 30*time.Second {
		t.Errorf("quad_click = %+v", cfg.Presets.QuadClick)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mistfan.yaml")
	content := `
poll: 10ms
timeout: 30m
broker: tcp://broker.local:1883
pins:
  mist: 17
presets:
  triple_click:
    on: 2s
    off: 20s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Poll != 10*time.Millisecond {
		t.Errorf("poll = %v", cfg.Poll)
	}
	if cfg.Timeout != 30*time.Minute {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Broker != "tcp://broker.local:1883" {
		t.Errorf("broker = %q", cfg.Broker)
	}
	if cfg.Pins.Mist != 17 {
		t.Errorf("mist pin = %d", cfg.Pins.Mist)
	}
	// Unset keys keep their defaults.
	if cfg.Pins.ButtonOne != 9 {
		t.Errorf("button one pin = %d", cfg.Pins.ButtonOne)
	}
	if cfg.Presets.TripleClick.On != 2*time.Second || cfg.Presets.TripleClick.Off != 20*time.Second {
		t.Errorf("triple_click = %+v", cfg.Presets.TripleClick)
	}
	if cfg.Presets.DoubleClick.Off != 30*time.Second {
		t.Errorf("double_click = %+v", cfg.Presets.DoubleClick)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"zero poll":     "poll: 0s\n",
		"zero timeout":  "timeout: 0s\n",
		"bad precision": "pwm:\n  precision_bits: 0\n",
		"zero window":   "gesture:\n  click_window: 0s\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mistfan.yaml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
