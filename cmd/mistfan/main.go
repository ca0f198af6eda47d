// Command mistfan drives a workshop misting rig from three pushbuttons:
// a mist solenoid relay, a PWM fan, MQTT telemetry and an HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronkirschen/mistFan/internal/button"
	"github.com/aaronkirschen/mistFan/internal/config"
	"github.com/aaronkirschen/mistFan/internal/control"
	"github.com/aaronkirschen/mistFan/internal/device"
	"github.com/aaronkirschen/mistFan/internal/gpio"
	"github.com/aaronkirschen/mistFan/internal/logger"
	"github.com/aaronkirschen/mistFan/internal/mqtt"
	"github.com/aaronkirschen/mistFan/internal/sched"
	"github.com/aaronkirschen/mistFan/internal/status"
	"github.com/aaronkirschen/mistFan/internal/web"
)

func main() {
	configPath := flag.String("config", "", "config file path (YAML; empty uses defaults and search paths)")
	poll := flag.Duration("poll", 0, "GPIO polling interval (overrides config)")
	timeout := flag.Duration("timeout", 0, "inactivity shutoff window (overrides config)")
	broker := flag.String("broker", "", `MQTT broker address ("off" disables, overrides config)`)
	httpAddr := flag.String("http", "", `HTTP status address ("off" disables, overrides config)`)
	logLevel := flag.String("log-level", "", "log level: debug, info, warn or error (overrides config)")
	printState := flag.Bool("print-state", false, "print current button state and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	applyOverrides(&cfg, *poll, *timeout, *broker, *httpAddr, *logLevel)

	log := logger.Get(cfg.LogLevel)
	if err := run(cfg, *printState, log); err != nil {
		log.Fatalw("fatal", "err", err)
	}
}

// applyOverrides folds non-empty flag values into the loaded config.
// "off" empties the broker and HTTP addresses, which disables them.
func applyOverrides(cfg *config.Config, poll, timeout time.Duration, broker, httpAddr, logLevel string) {
	if poll != 0 {
		cfg.Poll = poll
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}
	if broker != "" {
		cfg.Broker = broker
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Broker == "off" {
		cfg.Broker = ""
	}
	if cfg.HTTPAddr == "off" {
		cfg.HTTPAddr = ""
	}
}

func run(cfg config.Config, printState bool, log *logger.Logger) error {
	buttons, err := gpio.NewRealButtons(cfg.Pins.ButtonOne, cfg.Pins.ButtonTwo, cfg.Pins.ButtonThree)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	if printState {
		sample, err := buttons.Read()
		if err != nil {
			return fmt.Errorf("read buttons: %w", err)
		}
		fmt.Printf("ONE: %s, TWO: %s, THREE: %s\n",
			pressedString(sample.One), pressedString(sample.Two), pressedString(sample.Three))
		return nil
	}

	outputs, err := gpio.NewRealOutputs(cfg.Pins.Mist, cfg.PWM.Chip, cfg.PWM.Channel, cfg.PWM.FrequencyHz, cfg.PWM.PrecisionBits)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	// Close forces the mist relay low and the fan duty to zero.
	defer outputs.Close()

	dev := device.New(outputs, cfg.PWM.PrecisionBits, log)

	var publisher mqtt.Publisher
	var connStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		real := mqtt.NewRealPublisher(cfg.Broker, log)
		defer real.Close()
		publisher = real
		connStatus = real
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:    cfg.Poll.Milliseconds(),
		TimeoutMs: cfg.Timeout.Milliseconds(),
		Broker:    cfg.Broker,
		HTTPAddr:  cfg.HTTPAddr,
	})

	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Warnw("startup event publish failed", "err", err)
		} else {
			log.Infow("published startup event")
		}
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, log)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("http server error", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infow("http status server listening", "addr", cfg.HTTPAddr)
	}

	log.Infow("started",
		"poll", cfg.Poll, "timeout", cfg.Timeout,
		"broker", cfg.Broker, "http", cfg.HTTPAddr)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := loopDeps{
		buttons:    buttons,
		dev:        dev,
		cfg:        cfg,
		publisher:  publisher,
		connStatus: connStatus,
		tracker:    tracker,
		log:        log,
	}
	return runLoop(d, time.Now, ticker.C, sigCh)
}

// loopDeps carries everything runLoop needs, so tests can swap in fakes.
type loopDeps struct {
	buttons    gpio.Buttons
	dev        *device.Device
	cfg        config.Config
	publisher  mqtt.Publisher
	connStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	log        *logger.Logger
}

// lane binds one physical button to its gesture detector.
type lane struct {
	id      button.ID
	det     *button.Detector
	pressed func(gpio.ButtonSample) bool
}

func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	start := now()
	s := sched.New()

	gcfg := button.Config{
		Debounce:     d.cfg.Gesture.Debounce,
		ClickWindow:  d.cfg.Gesture.ClickWindow,
		PressStart:   d.cfg.Gesture.PressStart,
		HeldInterval: d.cfg.Gesture.HeldInterval,
	}
	lanes := []lane{
		{button.One, button.NewDetector(gcfg), func(s gpio.ButtonSample) bool { return s.One }},
		{button.Two, button.NewDetector(gcfg), func(s gpio.ButtonSample) bool { return s.Two }},
		{button.Three, button.NewDetector(gcfg), func(s gpio.ButtonSample) bool { return s.Three }},
	}

	var pub control.Publisher
	if d.publisher != nil {
		pub = d.publisher
	}
	ctrl := control.New(s, d.dev, control.Config{
		Timeout:   d.cfg.Timeout,
		Presets:   presetsFromConfig(d.cfg.Presets),
		HoldGuard: lanes[0].det.IsLongPressed,
	}, d.log, pub)

	pollButtons := func(t time.Time) {
		sample, err := d.buttons.Read()
		if err != nil {
			d.log.Errorw("button read failed", "err", err)
			return
		}
		for _, l := range lanes {
			for _, ev := range l.det.Tick(l.pressed(sample), t) {
				ctrl.HandleGesture(t, l.id, ev)
			}
		}
	}

	// The fan runs from power-on; button two switches it off.
	d.dev.FanOn()
	ctrl.ResetTimeout(start)
	pollTask := s.Every(start, 0, pollButtons)

	for {
		select {
		case sg := <-sig:
			d.log.Infow("shutting down", "signal", sg)
			if d.publisher != nil {
				publishShutdown(d, now(), sg)
			}
			return nil

		case <-tick:
			t := now()
			// The inactivity shutoff cancels every scheduled task,
			// including button polling; re-arm polling so the
			// buttons stay alive afterwards.
			if !s.Active(pollTask) {
				pollTask = s.Every(t, 0, pollButtons)
			}
			s.Tick(t)

			d.tracker.Update(d.dev.IsMistOn(), d.dev.FanPercent(),
				ctrl.ActiveCycle(), ctrl.TimeoutDeadline(), ctrl.Counts())
			if d.connStatus != nil {
				d.tracker.SetMQTTConnected(d.connStatus.IsConnected())
			}
		}
	}
}

func publishShutdown(d loopDeps, now time.Time, sg os.Signal) {
	name := "UNKNOWN"
	switch sg {
	case syscall.SIGINT:
		name = "SIGINT"
	case syscall.SIGTERM:
		name = "SIGTERM"
	}
	event := mqtt.SystemEvent{
		Timestamp: now,
		Event:     "SHUTDOWN",
		Reason:    name,
		Retained:  true,
	}
	if d.tracker != nil {
		if d.connStatus != nil {
			d.tracker.SetMQTTConnected(d.connStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", name)
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		d.log.Warnw("shutdown event publish failed", "err", err)
	} else {
		d.log.Infow("published shutdown event")
	}
}

func presetsFromConfig(p config.Presets) control.Presets {
	return control.Presets{
		ClickPulse:  p.PulseOn,
		DoubleClick: control.CycleSpec{On: p.DoubleClick.On, Off: p.DoubleClick.Off},
		TripleClick: control.CycleSpec{On: p.TripleClick.On, Off: p.TripleClick.Off},
		QuadClick:   control.CycleSpec{On: p.QuadClick.On, Off: p.QuadClick.Off},
		QuintClick:  control.CycleSpec{On: p.QuintClick.On, Off: p.QuintClick.Off},
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
