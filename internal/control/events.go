package control

import (
	"time"

	"github.com/aaronkirschen/mistFan/internal/button"
)

// EventType labels a controller event for logging and MQTT.
type EventType string

const (
	// EventGesture is a recognized button gesture.
	EventGesture EventType = "GESTURE"
	// EventMistOn / EventMistOff are actual relay transitions, emitted
	// only when the hardware line changed.
	EventMistOn  EventType = "MIST_ON"
	EventMistOff EventType = "MIST_OFF"
	// EventFanOn / EventFanOff are fan commands.
	EventFanOn  EventType = "FAN_ON"
	EventFanOff EventType = "FAN_OFF"
	// EventCycleStart / EventCycleCancel track the repeating mist cycle.
	EventCycleStart  EventType = "CYCLE_START"
	EventCycleCancel EventType = "CYCLE_CANCEL"
	// EventTimeout is the inactivity shutoff firing.
	EventTimeout EventType = "TIMEOUT"
)

// Event is a controller occurrence to be logged and published. Device
// fields carry the state after the event took effect.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Gesture events only.
	Button  button.ID
	Gesture button.Kind
	Clicks  int

	// Device state after the event.
	MistOn     bool
	FanPercent int
	Cycle      *CycleSpec // active repeating cycle, if any
}

// Publisher receives controller events. Implementations must not block;
// publish failures are logged and dropped.
type Publisher interface {
	Publish(Event) error
}

// EventCounts tracks controller activity since startup.
type EventCounts struct {
	Gestures        int
	MistOn          int
	MistOff         int
	MistPulses      int
	CyclesStarted   int
	CyclesCancelled int
	Timeouts        int
}
