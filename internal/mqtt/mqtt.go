// Package mqtt publishes controller events and system lifecycle events to
// a broker, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/aaronkirschen/mistFan/internal/control"
)

// Topic is the MQTT topic for controller events (gestures, mist/fan
// transitions, cycle changes).
const Topic = "workshop/mistfan/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "workshop/mistfan/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (must not crash the process).
	Publish(event control.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message envelope for controller events.
type Payload struct {
	MistFan EventPayload `json:"mistfan"`
}

// EventPayload contains the controller event details.
type EventPayload struct {
	Timestamp  string        `json:"timestamp"`
	Event      string        `json:"event"`
	Button     string        `json:"button,omitempty"`
	Gesture    string        `json:"gesture,omitempty"`
	Clicks     int           `json:"clicks,omitempty"`
	Mist       string        `json:"mist"`
	FanPercent int           `json:"fan_percent"`
	Cycle      *CyclePayload `json:"cycle,omitempty"`
}

// CyclePayload describes the active repeating mist cycle.
type CyclePayload struct {
	OnMs  int64 `json:"on_ms"`
	OffMs int64 `json:"off_ms"`
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event control.Event) ([]byte, error) {
	p := Payload{
		MistFan: EventPayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Event:      string(event.Type),
			Mist:       stateString(event.MistOn),
			FanPercent: event.FanPercent,
		},
	}
	if event.Type == control.EventGesture {
		p.MistFan.Button = event.Button.String()
		p.MistFan.Gesture = event.Gesture.String()
		p.MistFan.Clicks = event.Clicks
	}
	if event.Cycle != nil {
		p.MistFan.Cycle = &CyclePayload{
			OnMs:  event.Cycle.On.Milliseconds(),
			OffMs: event.Cycle.Off.Milliseconds(),
		}
	}
	return json.Marshal(p)
}

// SystemPayload is the MQTT message envelope for system events without a
// pre-formatted status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
