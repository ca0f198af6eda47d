package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string     `json:"event,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	Mist             string     `json:"mist"`
	FanPercent       int        `json:"fan_percent"`
	Cycle            *CycleJSON `json:"cycle,omitempty"`
	ShutoffDeadline  string     `json:"shutoff_deadline,omitempty"`
	ShutoffInSeconds int64      `json:"shutoff_in_seconds,omitempty"`
	UptimeSeconds    int64      `json:"uptime_seconds"`
	StartTime        string     `json:"start_time"`
	Timestamp        string     `json:"timestamp"`
	MQTT             MQTTStatus `json:"mqtt"`
	Counts           CountsJSON `json:"event_counts"`
	Config           ConfigJSON `json:"config"`
}

// CycleJSON describes the active repeating mist cycle.
type CycleJSON struct {
	OnMs  int64 `json:"on_ms"`
	OffMs int64 `json:"off_ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the activity counters.
type CountsJSON struct {
	Gestures        int `json:"gestures"`
	MistOn          int `json:"mist_on"`
	MistOff         int `json:"mist_off"`
	MistPulses      int `json:"mist_pulses"`
	CyclesStarted   int `json:"cycles_started"`
	CyclesCancelled int `json:"cycles_cancelled"`
	Timeouts        int `json:"timeouts"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs    int64  `json:"poll_ms"`
	TimeoutMs int64  `json:"timeout_ms"`
	Broker    string `json:"broker"`
	HTTPAddr  string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mist:          stateString(snap.MistOn),
		FanPercent:    snap.FanPercent,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Gestures:        snap.Counts.Gestures,
			MistOn:          snap.Counts.MistOn,
			MistOff:         snap.Counts.MistOff,
			MistPulses:      snap.Counts.MistPulses,
			CyclesStarted:   snap.Counts.CyclesStarted,
			CyclesCancelled: snap.Counts.CyclesCancelled,
			Timeouts:        snap.Counts.Timeouts,
		},
		Config: ConfigJSON{
			PollMs:    snap.Config.PollMs,
			TimeoutMs: snap.Config.TimeoutMs,
			Broker:    snap.Config.Broker,
			HTTPAddr:  snap.Config.HTTPAddr,
		},
	}

	if snap.Cycle != nil {
		inner.Cycle = &CycleJSON{
			OnMs:  snap.Cycle.On.Milliseconds(),
			OffMs: snap.Cycle.Off.Milliseconds(),
		}
	}
	if !snap.Deadline.IsZero() {
		inner.ShutoffDeadline = snap.Deadline.UTC().Format(time.RFC3339)
		if in := snap.Deadline.Sub(snap.Now); in > 0 {
			inner.ShutoffInSeconds = int64(in.Truncate(time.Second).Seconds())
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
